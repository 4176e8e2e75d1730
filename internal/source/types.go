package source

// FileID uniquely identifies a scenario file within a run.
type FileID uint32 // просто ID источника

// NoFileID marks spans that do not point into any file.
const NoFileID FileID = 0

// IsValid reports whether the id refers to a loaded file.
func (id FileID) IsValid() bool { return id != NoFileID }
