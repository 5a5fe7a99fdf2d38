package catalog

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// ErrInvalidPage is returned for page numbers that are not integers or fall outside the page range.
var ErrInvalidPage = errors.New("invalid page")

const LastPage = "last"

type Page struct {
	Number   int   `json:"number"`
	NumPages int   `json:"num_pages"`
	Count    int64 `json:"count"`
	Size     int   `json:"page_size"`
}

func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) Offset() int       { return (p.Number - 1) * p.Size }

// ResolvePage turns the raw "page" parameter into a page of total items.
// An empty collection still has one (empty) page.
func ResolvePage(raw string, total int64, size int) (Page, error) {
	if size < 1 {
		size = 1
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	page := Page{NumPages: numPages, Count: total, Size: size}

	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		page.Number = 1
		return page, nil
	case LastPage:
		page.Number = numPages
		return page, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > numPages {
		return page, ErrInvalidPage
	}
	page.Number = n
	return page, nil
}

func Paginate(p Page) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}
