package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ItemType string

const (
	ItemTypeCourse  ItemType = "course"
	ItemTypeProduct ItemType = "product"
)

// ParseItemType accepts the wire names "course" and "product".
func ParseItemType(s string) (ItemType, error) {
	switch t := ItemType(strings.ToLower(strings.TrimSpace(s))); t {
	case ItemTypeCourse, ItemTypeProduct:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown item type %q", ErrValidation, s)
	}
}

// ItemRef points at exactly one catalog entry. The zero value is invalid;
// construct it with CourseRef or ProductRef.
type ItemRef struct {
	kind ItemType
	id   string
}

func CourseRef(id string) ItemRef {
	return ItemRef{kind: ItemTypeCourse, id: id}
}

func ProductRef(id string) ItemRef {
	return ItemRef{kind: ItemTypeProduct, id: id}
}

// NewItemRef builds a reference from a type tag and an id.
func NewItemRef(t ItemType, id string) (ItemRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ItemRef{}, fmt.Errorf("%w: item id required", ErrValidation)
	}
	switch t {
	case ItemTypeCourse:
		return CourseRef(id), nil
	case ItemTypeProduct:
		return ProductRef(id), nil
	default:
		return ItemRef{}, fmt.Errorf("%w: unknown item type %q", ErrValidation, t)
	}
}

func (r ItemRef) Type() ItemType { return r.kind }

func (r ItemRef) ID() string { return r.id }

func (r ItemRef) IsZero() bool { return r.kind == "" }

func (r ItemRef) CourseID() (string, bool) {
	if r.kind != ItemTypeCourse {
		return "", false
	}
	return r.id, true
}

func (r ItemRef) ProductID() (string, bool) {
	if r.kind != ItemTypeProduct {
		return "", false
	}
	return r.id, true
}

// Columns returns the nullable (course_id, product_id) pair used by the
// persisted layout.
func (r ItemRef) Columns() (courseID, productID *string) {
	id := r.id
	switch r.kind {
	case ItemTypeCourse:
		return &id, nil
	case ItemTypeProduct:
		return nil, &id
	}
	return nil, nil
}

// ItemRefFromColumns rebuilds a reference from its persisted form. The type
// tag decides which column is read.
func ItemRefFromColumns(itemType string, courseID, productID *string) (ItemRef, error) {
	t, err := ParseItemType(itemType)
	if err != nil {
		return ItemRef{}, err
	}
	switch t {
	case ItemTypeCourse:
		if courseID == nil || productID != nil {
			return ItemRef{}, fmt.Errorf("%w: course item must reference only a course", ErrValidation)
		}
		return CourseRef(*courseID), nil
	default:
		if productID == nil || courseID != nil {
			return ItemRef{}, fmt.Errorf("%w: product item must reference only a product", ErrValidation)
		}
		return ProductRef(*productID), nil
	}
}

func (r ItemRef) String() string {
	return string(r.kind) + ":" + r.id
}

type itemRefJSON struct {
	ItemType  ItemType `json:"itemType"`
	CourseID  *string  `json:"courseId,omitempty"`
	ProductID *string  `json:"productId,omitempty"`
}

func (r ItemRef) MarshalJSON() ([]byte, error) {
	c, p := r.Columns()
	return json.Marshal(itemRefJSON{ItemType: r.kind, CourseID: c, ProductID: p})
}

func (r *ItemRef) UnmarshalJSON(data []byte) error {
	var raw itemRefJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ref, err := ItemRefFromColumns(string(raw.ItemType), raw.CourseID, raw.ProductID)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
