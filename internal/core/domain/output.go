package domain

import "time"

// OutputFile is one instruction for the output writer: either literal contents or a copy of Source.
type OutputFile struct {
	Outfile  string
	Contents string
	Source   string
	Mtime    time.Time
}

// IsCopy reports whether the instruction copies an existing file.
func (o OutputFile) IsCopy() bool {
	return o.Source != ""
}
