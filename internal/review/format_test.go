package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStars(t *testing.T) {
	require.Equal(t, "", Stars(0))
	require.Equal(t, "⭐⭐⭐⭐⭐", Stars(5))
	require.Equal(t, 3, strings.Count(Stars(3), starGlyph))
}

func TestFormatPost(t *testing.T) {
	d := Draft{
		Product:    "<script>&</script>",
		Rating:     2,
		RatingSet:  true,
		ReviewText: "a &amp; b",
		Category:   CategoryDelivery,
	}
	want := "<b>Товар или услуга</b>: &lt;script&gt;&amp;&lt;/script&gt;\n" +
		"<b>Рэйтинг</b>: ⭐⭐\n" +
		"<b>Отзыв</b>: a &amp;amp; b\n" +
		"\n" +
		"#отзыв #отзыв_доставка"
	require.Equal(t, want, FormatPost(d))

	d.Rating = 0
	require.Contains(t, FormatPost(d), "<b>Рэйтинг</b>: \n")
}

func TestCategories(t *testing.T) {
	require.Equal(t, []Category{CategoryTea, CategoryDelivery, CategoryService}, Categories())

	cat, err := ParseCategory(" service ")
	require.NoError(t, err)
	require.Equal(t, CategoryService, cat)
	require.Equal(t, "Сервис", cat.Label())
	require.Equal(t, "отзыв_сервис", cat.Hashtag())

	_, err = ParseCategory("чай")
	require.ErrorIs(t, err, ErrUnknownCategory)
	require.Empty(t, Category("coffee").Hashtag())
}

func TestDraftComplete(t *testing.T) {
	full := Draft{Product: "p", Rating: 0, RatingSet: true, ReviewText: "r", Category: CategoryTea}
	require.True(t, full.Complete())

	for name, mutate := range map[string]func(*Draft){
		"no product":   func(d *Draft) { d.Product = "" },
		"no rating":    func(d *Draft) { d.RatingSet = false },
		"bad rating":   func(d *Draft) { d.Rating = 6 },
		"no review":    func(d *Draft) { d.ReviewText = "" },
		"bad category": func(d *Draft) { d.Category = "coffee" },
	} {
		d := full
		mutate(&d)
		require.False(t, d.Complete(), name)
	}
}

func TestParseRating(t *testing.T) {
	for want := MinRating; want <= MaxRating; want++ {
		got, err := ParseRating(strings.Repeat(" ", want) + string(rune('0'+want)))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	for _, in := range []string{"", "abc", "3.5", "five", "٣", "0x3"} {
		_, err := ParseRating(in)
		require.ErrorIs(t, err, ErrNotANumber, in)
	}
	for _, in := range []string{"6", "-1", "100"} {
		_, err := ParseRating(in)
		require.ErrorIs(t, err, ErrRatingOutOfRange, in)
	}
}
