// Package review implements the review conversation and channel publishing.
package review

import (
	"errors"
	"strings"

	"github.com/samber/lo"

	"github.com/m3rciful/reviewbot/core/telegram/state"
)

// Conversation states, in the order a user walks through them.
const (
	StateProduct  state.State = "review.product"
	StateRating   state.State = "review.rating"
	StateText     state.State = "review.text"
	StateCategory state.State = "review.category"
)

// CallbackCategory is the unique key of the category chooser buttons.
const CallbackCategory = "review_category"

// ErrUnknownCategory is returned for a payload naming no category.
var ErrUnknownCategory = errors.New("review: unknown category")

// Category is the topic a review is filed under.
type Category string

const (
	CategoryTea      Category = "tea"
	CategoryDelivery Category = "delivery"
	CategoryService  Category = "service"
)

type categoryInfo struct {
	key   Category
	label string
	tag   string
}

// categories keeps chooser order.
var categories = []categoryInfo{
	{key: CategoryTea, label: "Чай", tag: "чай"},
	{key: CategoryDelivery, label: "Доставка", tag: "доставка"},
	{key: CategoryService, label: "Сервис", tag: "сервис"},
}

// Categories lists all categories in chooser order.
func Categories() []Category {
	return lo.Map(categories, func(ci categoryInfo, _ int) Category { return ci.key })
}

func lookupCategory(c Category) (categoryInfo, bool) {
	return lo.Find(categories, func(ci categoryInfo) bool { return ci.key == c })
}

// ParseCategory maps a button payload to a Category.
func ParseCategory(payload string) (Category, error) {
	ci, ok := lookupCategory(Category(strings.TrimSpace(payload)))
	if !ok {
		return "", ErrUnknownCategory
	}
	return ci.key, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := lookupCategory(c)
	return ok
}

// Label is the button caption shown to the user.
func (c Category) Label() string {
	ci, _ := lookupCategory(c)
	return ci.label
}

// Hashtag is the channel tag without the leading '#', e.g. "отзыв_чай".
func (c Category) Hashtag() string {
	ci, ok := lookupCategory(c)
	if !ok {
		return ""
	}
	return "отзыв_" + ci.tag
}

// Draft is the review collected so far in one conversation.
type Draft struct {
	Product    string
	Rating     int
	RatingSet  bool
	ReviewText string
	Category   Category
}

// Complete reports whether every field is filled and valid, which is the only
// condition under which a draft may be published.
func (d Draft) Complete() bool {
	return d.Product != "" &&
		d.RatingSet && d.Rating >= MinRating && d.Rating <= MaxRating &&
		d.ReviewText != "" &&
		d.Category.Valid()
}
