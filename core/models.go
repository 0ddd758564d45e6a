package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a stable identifier derived from content.
// Identical input always produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Intent classifies what a user utterance is asking for.
type Intent int

const (
	// IntentSemantic is a free-form question answered by similarity search.
	IntentSemantic Intent = iota + 1
	// IntentExact is a request answerable by structured filtering alone.
	IntentExact
	// IntentHybrid combines structured filters with semantic retrieval.
	IntentHybrid
	// IntentChoice references a previously offered option ("the second one").
	IntentChoice
	// IntentAction asks to do something with a listing (tour, apply, details).
	IntentAction
)

// String returns the intent name for logs and wire payloads.
func (i Intent) String() string {
	switch i {
	case IntentSemantic:
		return "semantic"
	case IntentExact:
		return "exact"
	case IntentHybrid:
		return "hybrid"
	case IntentChoice:
		return "choice"
	case IntentAction:
		return "action"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// Address is a listing address with its structured parts.
type Address struct {
	Raw   string `json:"raw"`
	City  string `json:"city"`
	State string `json:"state"`
}

// Unit holds the physical details of a listing.
type Unit struct {
	Beds         int     `json:"beds"`
	Baths        float64 `json:"baths"`
	SquareFeet   int     `json:"square_feet"`
	Availability string  `json:"availability"`
	Floorplan    string  `json:"floorplan"`
}

// Terms holds the rental terms of a listing.
type Terms struct {
	Rent           float64 `json:"rent"`
	Deposit        float64 `json:"deposit"`
	ApplicationFee float64 `json:"application_fee"`
}

// PetPolicy describes whether and which pets a listing allows.
type PetPolicy struct {
	Allowed bool     `json:"allowed"`
	Types   []string `json:"types,omitempty"`
	Rent    float64  `json:"rent,omitempty"`
	Deposit float64  `json:"deposit,omitempty"`
}

// Links holds the deep-link URLs for a listing.
type Links struct {
	View  string `json:"view"`
	Tour  string `json:"tour"`
	Apply string `json:"apply"`
}

// Property is a single rental listing.
// ID must be globally unique and stable; records missing an ID or a Name are
// corrupt and excluded from search results.
type Property struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Address           Address   `json:"address"`
	Unit              Unit      `json:"unit"`
	Terms             Terms     `json:"terms"`
	Pets              PetPolicy `json:"pets"`
	Appliances        []string  `json:"appliances,omitempty"`
	UtilitiesIncluded []string  `json:"utilities_included,omitempty"`
	SpecialOffer      bool      `json:"special_offer"`
	SpecialOfferText  string    `json:"special_offer_text,omitempty"`
	Links             Links     `json:"links"`
}

// Describe renders the listing as a short natural-language line.
// It is the text embedded for semantic search and the raw material for
// fallback answers.
func (p *Property) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %d bed %.1f bath", p.Name, p.Unit.Beds, p.Unit.Baths)
	if p.Unit.SquareFeet > 0 {
		fmt.Fprintf(&b, ", %d sqft", p.Unit.SquareFeet)
	}
	fmt.Fprintf(&b, ", $%.0f/mo", p.Terms.Rent)
	if p.Address.City != "" {
		fmt.Fprintf(&b, " in %s", p.Address.City)
	}
	if p.Pets.Allowed {
		b.WriteString(", pets welcome")
		if len(p.Pets.Types) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(p.Pets.Types, ", "))
		}
	}
	if len(p.UtilitiesIncluded) > 0 {
		fmt.Fprintf(&b, ", %s included", strings.Join(p.UtilitiesIncluded, "/"))
	}
	if p.SpecialOffer && p.SpecialOfferText != "" {
		fmt.Fprintf(&b, ". Special: %s", p.SpecialOfferText)
	}
	return b.String()
}

// RentRange is an inclusive monthly rent bound.
type RentRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SqftRange is an inclusive square-footage bound.
type SqftRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Filters are typed constraints extracted from free text.
// Nil fields mean "no constraint".
type Filters struct {
	Beds        *int       `json:"beds,omitempty"`
	Baths       *float64   `json:"baths,omitempty"`
	Rent        *RentRange `json:"rent,omitempty"`
	City        *string    `json:"city,omitempty"`
	PetsAllowed *bool      `json:"pets_allowed,omitempty"`
	Sqft        *SqftRange `json:"sqft,omitempty"`
}

// Empty reports whether no constraint is present.
func (f Filters) Empty() bool {
	return f.Beds == nil && f.Baths == nil && f.Rent == nil &&
		f.City == nil && f.PetsAllowed == nil && f.Sqft == nil
}

// SearchQuery is the analyzed form of a user utterance.
type SearchQuery struct {
	Intent  Intent
	Text    string
	Filters Filters
}

// SearchResult is an ordered candidate list for a query.
type SearchResult struct {
	Properties []*Property
	Query      SearchQuery
	Latency    time.Duration
	CacheHit   bool
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn entry in a chat session.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is an append-only per-session conversation history.
// The message list only grows; the user message of a turn always precedes
// its assistant message.
type ChatSession struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
