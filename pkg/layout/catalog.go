package layout

import (
	"github.com/matzehuels/photobooth/pkg/errors"
)

// DefaultID is the layout used when an unknown identifier is requested.
const DefaultID = "4v"

// Builtin is the fixed table of layouts offered by the booth.
var Builtin = []Descriptor{
	{ID: "2h", Name: "2 Photos", Description: "Vertical strip - 2 photos", PhotoCount: 2, Grid: Grid{Cols: 1, Rows: 2}},
	{ID: "3v", Name: "3 Photos", Description: "Vertical strip - 3 photos", PhotoCount: 3, Grid: Grid{Cols: 1, Rows: 3}},
	{ID: "4v", Name: "4 Photos", Description: "Vertical strip - 4 photos", PhotoCount: 4, Grid: Grid{Cols: 1, Rows: 4}},
	{ID: "4g", Name: "4 Photos", Description: "Grid - 2x2", PhotoCount: 4, Grid: Grid{Cols: 2, Rows: 2}},
	{ID: "6g", Name: "6 Photos", Description: "Grid - 2x3", PhotoCount: 6, Grid: Grid{Cols: 2, Rows: 3}},
	{ID: "9g", Name: "9 Photos", Description: "Grid - 3x3", PhotoCount: 9, Grid: Grid{Cols: 3, Rows: 3}},
}

// Default is the catalog built from Builtin.
var Default = MustCatalog(Builtin, DefaultID)

// Catalog maps layout identifiers to descriptors.
type Catalog struct {
	order     []string
	byID      map[string]Descriptor
	defaultID string
}

// NewCatalog validates every descriptor and builds a catalog. defaultID must
// name one of the descriptors.
func NewCatalog(ds []Descriptor, defaultID string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Descriptor, len(ds)), defaultID: defaultID}
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidLayout, "duplicate layout id %q", d.ID)
		}
		c.byID[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	if _, ok := c.byID[defaultID]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "default layout %q not in catalog", defaultID)
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error. It is meant for
// package-level tables.
func MustCatalog(ds []Descriptor, defaultID string) *Catalog {
	c, err := NewCatalog(ds, defaultID)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the descriptor for id and whether it was found. On a miss
// the default descriptor is returned.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	if d, ok := c.byID[id]; ok {
		return d, true
	}
	return c.byID[c.defaultID], false
}

// Resolve returns the descriptor for id, or the default descriptor when id
// is unknown. It never fails.
func (c *Catalog) Resolve(id string) Descriptor {
	d, _ := c.Lookup(id)
	return d
}

// DefaultLayout returns the catalog's default descriptor.
func (c *Catalog) DefaultLayout() Descriptor { return c.byID[c.defaultID] }

// All returns the descriptors in catalog order.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.order))
	for i, id := range c.order {
		out[i] = c.byID[id]
	}
	return out
}

// IDs returns the layout identifiers in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}
