package module

import (
	"fmt"
	"time"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
)

// Date represents a DICOM Date (DA VR)
type Date struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as YYYYMMDD
func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

func NewDate(t time.Time) Date {
	return Date{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}
}

// Time represents a DICOM Time (TM VR) at second resolution
type Time struct {
	Hour   int
	Minute int
	Second int
}

// String formats the time as HHMMSS, 24-hour clock
func (t Time) String() string {
	return fmt.Sprintf("%02d%02d%02d", t.Hour, t.Minute, t.Second)
}

func NewTime(t time.Time) Time {
	return Time{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// IODModule is implemented by every module that contributes attributes to an IOD
type IODModule interface {
	ToTags() []IODElement
}

type IODElement struct {
	Tag   tag.Tag
	Value interface{}
}
