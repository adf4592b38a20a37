package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IDList is a list of primary keys in the comma separated form used by
// query parameters like ?tags=1,2,3.
type IDList []uint

// ParseIDList parses "1, 2,3" into an IDList. Empty input yields nil.
func ParseIDList(s string) (IDList, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make(IDList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("IDList: invalid id %q", p)
		}
		out = append(out, uint(id))
	}
	return out, nil
}

func (l IDList) String() string {
	strs := make([]string, len(l))
	for i, id := range l {
		strs[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(strs, ",")
}

// Base model with an auto-increment primary key and timestamps
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
