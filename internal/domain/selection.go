package domain

// SelectionMode chooses which slice of a profile listing to download.
type SelectionMode string

const (
	SelectAll         SelectionMode = "all"
	SelectSinglePage  SelectionMode = "single-offset"
	SelectOffsetRange SelectionMode = "offset-range"
	SelectIDRange     SelectionMode = "id-range"
)

// Selection is a profile listing policy. Offsets are in units of posts
// (platform page size is fixed at 50). For SelectIDRange, FirstID and
// LastID bound the range inclusively in listing order.
type Selection struct {
	Mode    SelectionMode
	Offset  int
	End     int
	FirstID string
	LastID  string
}

func SelectionAll() Selection {
	return Selection{Mode: SelectAll}
}

func SelectionPage(offset int) Selection {
	return Selection{Mode: SelectSinglePage, Offset: offset}
}

func SelectionRange(start, end int) Selection {
	return Selection{Mode: SelectOffsetRange, Offset: start, End: end}
}

func SelectionBetween(firstID, lastID string) Selection {
	return Selection{Mode: SelectIDRange, FirstID: firstID, LastID: lastID}
}
