package models

import (
	"fmt"
	"strconv"
	"strings"
)

// AssetID is the composite reference of an externally managed asset.
type AssetID struct {
	Customer int
	Space    int
	Asset    string
}

// String returns the "customer/space/asset" form stored in canvas_paintings.asset_id.
func (a AssetID) String() string {
	return fmt.Sprintf("%d/%d/%s", a.Customer, a.Space, a.Asset)
}

// ParseAssetID parses the "customer/space/asset" form.
func ParseAssetID(s string) (AssetID, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 || parts[2] == "" {
		return AssetID{}, fmt.Errorf("invalid asset id %q", s)
	}
	customer, err := strconv.Atoi(parts[0])
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid customer in asset id %q", s)
	}
	space, err := strconv.Atoi(parts[1])
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid space in asset id %q", s)
	}
	return AssetID{Customer: customer, Space: space, Asset: parts[2]}, nil
}

// AssetIDPtr returns a pointer to the string form, for persisting.
func AssetIDPtr(a AssetID) *string {
	s := a.String()
	return &s
}
