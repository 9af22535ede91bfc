package types

// FileState is the working-tree state of a file.
type FileState int

const (
	FileUnmodified FileState = iota
	FileModified
	FileAdded
	FileDeleted
	FileRenamed
	FileUntracked
	FileConflicted
)

// String returns a one-letter porcelain code.
func (s FileState) String() string {
	switch s {
	case FileUnmodified:
		return " "
	case FileModified:
		return "M"
	case FileAdded:
		return "A"
	case FileDeleted:
		return "D"
	case FileRenamed:
		return "R"
	case FileUntracked:
		return "?"
	case FileConflicted:
		return "U"
	default:
		return "!"
	}
}

// FileStatus is the state of one path relative to the repository root.
type FileStatus struct {
	Path  string
	State FileState
}

// HunkKind classifies a diff hunk.
type HunkKind int

const (
	HunkAdded HunkKind = iota
	HunkRemoved
	HunkChanged
)

// Hunk is a contiguous line range that differs from the base revision.
// Start is zero-based in the current text; Lines is zero for a pure removal.
type Hunk struct {
	Kind  HunkKind
	Start int
	Lines int
}
