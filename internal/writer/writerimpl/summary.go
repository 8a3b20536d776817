package writerimpl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kcgrab/kcgrab/internal/domain"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
	"github.com/kcgrab/kcgrab/pkg/htmltext"
)

func (w *WriterImpl) WriteSummary(target domain.DownloadTarget, format string) error {
	name := "files.txt"
	if format == "md" {
		name = "files.md"
	}
	path := filepath.Join(target.Dir, name)

	if err := os.MkdirAll(target.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", apperrors.ErrIO, target.Dir, err)
	}

	var content string
	if format == "md" {
		content = renderMarkdown(target.Record)
	} else {
		content = renderPlain(target.Record)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", apperrors.ErrIO, path, err)
	}
	w.logger.Debug("Wrote post summary", "path", path)
	return nil
}

func renderMarkdown(record *domain.PostRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", htmltext.ToPlain(record.Title))
	if desc := htmltext.ToMarkdown(record.Description); desc != "" {
		sb.WriteString(desc + "\n\n")
	}

	if len(record.Embeds) > 0 {
		sb.WriteString("## Embedded Content\n\n")
		for _, e := range record.Embeds {
			if e.Label != "" {
				fmt.Fprintf(&sb, "- [%s](%s)\n", e.Label, e.URL)
			} else {
				fmt.Fprintf(&sb, "- %s\n", e.URL)
			}
		}
		sb.WriteString("\n")
	}

	if len(record.Attachments) > 0 {
		sb.WriteString("## Attachments\n\n")
		for _, a := range record.Attachments {
			fmt.Fprintf(&sb, "- %s: %s\n", a.Filename, a.URL)
		}
	}
	return sb.String()
}

func renderPlain(record *domain.PostRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n\n", htmltext.ToPlain(record.Title))
	if desc := htmltext.ToPlain(record.Description); desc != "" {
		sb.WriteString(desc + "\n\n")
	}

	if len(record.Embeds) > 0 {
		sb.WriteString("Embedded Content:\n")
		for _, e := range record.Embeds {
			if e.Label != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", e.Label, e.URL)
			} else {
				fmt.Fprintf(&sb, "- %s\n", e.URL)
			}
		}
		sb.WriteString("\n")
	}

	if len(record.Attachments) > 0 {
		sb.WriteString("Attachments:\n")
		for _, a := range record.Attachments {
			fmt.Fprintf(&sb, "- %s: %s\n", a.Filename, a.URL)
		}
	}
	return sb.String()
}
