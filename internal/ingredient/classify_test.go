package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOverrides(t *testing.T) {
	c := NewDefaultClassifier()

	// "牛乳" must resolve to dairy through the override table, not to
	// meat through the shorter "牛" prefix shared with "牛肉".
	assert.Equal(t, CategoryDairy, c.Classify("牛乳"))
	assert.Equal(t, CategoryDairy, c.Classify("ぎゅうにゅう"))
	assert.Equal(t, CategoryDairy, c.Classify("低脂肪牛乳"))
	assert.Equal(t, CategoryMeat, c.Classify("牛肉"))
	assert.Equal(t, CategoryMeat, c.Classify("鶏肉"))
}

func TestClassifyKeywordTable(t *testing.T) {
	c := NewDefaultClassifier()

	tests := []struct {
		name string
		want string
	}{
		{"トマト", CategoryVegetable},
		{"ミニトマト", CategoryVegetable},
		{"しめじ", CategoryMushroom},
		{"エリンギ", CategoryMushroom},
		{"バター", CategoryDairy},
		{"食パン", CategoryGrain},
		{"オリーブ油", CategorySeasoning},
		{"プチッと鍋", CategoryProcessed},
		{"ベーコン", CategoryMeat},
		{"サーモン", CategoryMeat},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.name), "name %q", tt.name)
	}
}

func TestClassifyCategoryOrderBeatsKeywordLength(t *testing.T) {
	c := NewDefaultClassifier()

	// Keywords are longest-first within a category, but categories are
	// scanned in declared order: the vegetable "トマト" wins over the
	// longer seasoning keyword "ケチャップ".
	assert.Equal(t, CategoryVegetable, c.Classify("トマトケチャップ"))
}

func TestClassifyFallback(t *testing.T) {
	c := NewDefaultClassifier()

	assert.Equal(t, CategoryOther, c.Classify("ダンボール"))
	assert.Equal(t, CategoryOther, c.Classify(""))
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewDefaultClassifier()

	names := []string{"牛乳", "トマト", "プチッと鍋", "ダンボール", "舞茸"}
	for _, name := range names {
		first := c.Classify(name)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Classify(name), "name %q", name)
		}
	}
}

func TestClassifyCustomConfiguration(t *testing.T) {
	c := NewClassifier(
		[]Override{{Keyword: "豆乳", Category: CategoryOther}},
		[]CategoryKeywords{{Category: CategoryDairy, Keywords: []string{"乳"}}},
	)

	assert.Equal(t, CategoryOther, c.Classify("豆乳"))
	assert.Equal(t, CategoryDairy, c.Classify("乳飲料"))
}
