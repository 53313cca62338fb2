package models

// Source type constants.
const (
	SourceTypeM3ULink int16 = 1
	SourceTypeXtream  int16 = 2
)

// Media type constants.
const (
	MediaTypeLivestream int16 = 0
	MediaTypeMovie      int16 = 1
	MediaTypeSerie      int16 = 2
)

// DefaultCategory is used for channels whose source carries no group.
const DefaultCategory = "General"
