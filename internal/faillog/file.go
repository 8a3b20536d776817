package faillog

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/kcgrab/kcgrab/pkg/logger"
)

// File persists the log as newline-delimited links, rewritten whole on every
// change so an interrupted run leaves the file consistent with all posts
// completed so far.
type File struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

func NewFile(path string, log logger.Logger) *File {
	return &File{
		path:   path,
		logger: log.WithComponent("FailureLog"),
	}
}

var _ Repository = (*File)(nil)

func (f *File) Load() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.read()
	if err != nil {
		return nil, err
	}
	links := make([]string, 0, len(set))
	for link := range set {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

func (f *File) Record(link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	set, err := f.read()
	if err != nil {
		return err
	}
	if set[link] {
		return nil
	}
	set[link] = true
	f.logger.Warn("Recorded failed download", "link", link)
	return f.write(set)
}

func (f *File) Clear(link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	set, err := f.read()
	if err != nil {
		return err
	}
	if !set[link] {
		return nil
	}
	delete(set, link)
	f.logger.Info("Cleared failed download", "link", link)
	return f.write(set)
}

func (f *File) read() (map[string]bool, error) {
	set := make(map[string]bool)

	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			set[line] = true
		}
	}
	return set, scanner.Err()
}

func (f *File) write(set map[string]bool) error {
	links := make([]string, 0, len(set))
	for link := range set {
		links = append(links, link)
	}
	sort.Strings(links)

	var sb strings.Builder
	for _, link := range links {
		sb.WriteString(link)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(f.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrCannotPersist, err)
	}
	return nil
}
