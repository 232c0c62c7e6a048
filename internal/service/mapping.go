package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lib/pq"
)

// mapInto copies src into dst by field name, naming what in the error.
func mapInto(dst, src interface{}, what string) error {
	if err := copier.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to map %s: %w", what, err)
	}
	return nil
}

// patchFields collects the columns of a partial update. Nil pointers are
// skipped; a non-nil pointer to "" is kept so nullable text can be cleared.
type patchFields map[string]interface{}

func (p patchFields) str(column string, v *string) {
	if v != nil {
		p[column] = *v
	}
}

func (p patchFields) nullableStr(column string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		p[column] = nil
		return
	}
	p[column] = *v
}

func (p patchFields) list(column string, v []string) {
	if v != nil {
		p[column] = pq.StringArray(v)
	}
}
