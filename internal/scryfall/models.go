package scryfall

import (
	"errors"
	"fmt"
	"strings"
)

// Card is one specific printing of a Magic card as returned by Scryfall.
// ID is unique per printing; OracleID groups all printings of the same card.
type Card struct {
	ID              string     `json:"id"`
	OracleID        string     `json:"oracle_id"`
	Name            string     `json:"name"`
	SetCode         string     `json:"set"`
	SetName         string     `json:"set_name"`
	CollectorNumber string     `json:"collector_number"`
	Rarity          string     `json:"rarity"`
	TypeLine        string     `json:"type_line"`
	ColorIdentity   []string   `json:"color_identity"`
	Finishes        []string   `json:"finishes"`
	Prices          Prices     `json:"prices"`
	ImageURIs       *ImageURIs `json:"image_uris,omitempty"`
	CardFaces       []CardFace `json:"card_faces,omitempty"`
}

// CardFace is one face of a multi-faced card. Image URIs for DFCs live on
// the faces rather than the top-level card object.
type CardFace struct {
	Name      string     `json:"name"`
	TypeLine  string     `json:"type_line"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs holds card image URLs in various sizes.
type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
}

// Prices holds string-encoded USD prices; empty means no listed price.
type Prices struct {
	USD     string `json:"usd"`
	USDFoil string `json:"usd_foil"`
}

// FoilAvailable reports whether this printing exists in a foil finish.
func (c *Card) FoilAvailable() bool {
	for _, f := range c.Finishes {
		if f == "foil" || f == "etched" {
			return true
		}
	}
	return false
}

// Images returns the card's image URIs, falling back to the front face for
// double-faced cards.
func (c *Card) Images() *ImageURIs {
	if c.ImageURIs != nil {
		return c.ImageURIs
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].ImageURIs != nil {
		return c.CardFaces[0].ImageURIs
	}
	return nil
}

// ColorIdentityString renders the color identity in canonical WUBRG order.
func (c *Card) ColorIdentityString() string {
	return strings.Join(c.ColorIdentity, "")
}

// APIError is a structured error response from the Scryfall API.
type APIError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError is returned for 404 responses: the card does not exist.
// Any other failure is transient and must not be treated as "not found".
type NotFoundError struct {
	URL string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound reports whether err is a NotFoundError, unwrapping as needed.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
