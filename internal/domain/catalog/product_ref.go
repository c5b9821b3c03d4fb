package catalog

import (
	"bytes"
	"encoding/json"
)

// ProductRef is a cart line's product reference. The backend sends either the
// id string or the populated product document.
type ProductRef struct {
	ID      string
	Product *Product
}

// Label returns the product name when populated and the id otherwise.
func (r ProductRef) Label() string {
	if r.Product != nil && r.Product.Name != "" {
		return r.Product.Name
	}
	return r.ID
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ProductRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = ProductRef{ID: id}
		return nil
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ProductRef{ID: p.ID, Product: &p}
	return nil
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.Product != nil {
		return json.Marshal(r.Product)
	}
	return json.Marshal(r.ID)
}
