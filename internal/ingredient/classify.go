package ingredient

import (
	"sort"
	"strings"
)

// Override maps a specific keyword straight to a category, ahead of the
// regular keyword table. It exists to defeat false positives from short
// substrings ("牛乳" must resolve to dairy before "牛" pulls it to meat).
type Override struct {
	Keyword  string
	Category string
}

// CategoryKeywords is one category and the keywords that select it.
// Categories are scanned in declared order; within a category, keywords
// are tested longest-first.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// DefaultOverrides are the ambiguous short-keyword overrides of the
// stock configuration.
var DefaultOverrides = []Override{
	{"牛乳", CategoryDairy},
	{"ぎゅうにゅう", CategoryDairy},
	{"チーズ", CategoryDairy},
	{"ヨーグルト", CategoryDairy},
	{"牛肉", CategoryMeat},
	{"鶏肉", CategoryMeat},
	{"豚肉", CategoryMeat},
}

// DefaultCategoryKeywords is the stock category keyword table.
var DefaultCategoryKeywords = []CategoryKeywords{
	{CategoryMeat, []string{
		"牛肉", "鶏肉", "豚肉", "鶏胸肉", "鶏もも肉", "ステーキ", "ロース", "ヒレ",
		"チキン", "豚バラ", "ハム", "ベーコン", "ソーセージ", "ウインナー",
		"鮭", "サーモン", "鯖", "サバ", "マグロ", "ウナギ", "カツオ", "さんま", "イワシ", "アジ", "しらす", "ツナ", "魚肉",
	}},
	{CategoryVegetable, []string{
		"もやし", "豆もやし", "トマト", "ニンジン", "人参", "キャベツ", "玉ねぎ", "玉葱",
		"きゅうり", "キュウリ", "ピーマン", "白菜", "大根", "だいこん", "ごぼう",
		"レタス", "ほうれん草", "ほうれんそう", "小松菜", "チンゲン菜", "水菜",
		"ブロッコリー", "カリフラワー", "さやいんげん", "いんげん", "ネギ", "長ネギ",
		"みょうが", "生姜", "ニンニク", "ジャガイモ", "たまねぎ",
	}},
	{CategoryMushroom, []string{
		"まいたけ", "マイタケ", "舞茸", "えのき", "えのき茸", "えのきたけ",
		"しいたけ", "シイタケ", "しめじ", "シメジ", "ぶなしめじ", "ブナシメジ",
		"なめこ", "ナメコ", "マッシュルーム", "きのこ",
		"エリンギ", "エノキタケ", "エノキ茸",
	}},
	{CategoryDairy, []string{
		"牛乳", "ぎゅうにゅう", "乳製品", "チーズ", "ヨーグルト", "バター", "生クリーム", "クリーム",
		"マーガリン", "プロセスチーズ", "ミルク",
	}},
	{CategoryGrain, []string{
		"米", "ご飯", "ごはん", "パン", "食パン", "フランスパン", "クロワッサン",
		"麺", "うどん", "そば", "スパゲッティ", "パスタ", "ラーメン",
		"そうめん", "冷やし中華", "中華麺",
	}},
	{CategorySeasoning, []string{
		"醤油", "しょうゆ", "味噌", "みそ", "塩", "しお", "砂糖", "さとう",
		"胡椒", "こしょう", "油", "サラダ油", "オリーブ油", "ごま油",
		"酢", "マヨネーズ", "ケチャップ", "ソース", "ウスターソース",
	}},
	{CategoryProcessed, []string{
		"プチッと鍋", "即席麺", "カップ麺", "冷凍食品", "鍋", "なべ",
		"じゃがりこ", "ポテトチップス", "スナック", "菓子",
	}},
}

// Classifier guesses an ingredient's category from its name by keyword
// substring matching.
type Classifier struct {
	overrides []Override
	table     []CategoryKeywords
}

// NewClassifier builds a classifier from the given configuration. The
// keyword lists are sorted longest-first once up front; the caller's
// slices are not modified.
func NewClassifier(overrides []Override, table []CategoryKeywords) *Classifier {
	sorted := make([]CategoryKeywords, len(table))
	for i, ck := range table {
		keywords := append([]string(nil), ck.Keywords...)
		sort.SliceStable(keywords, func(a, b int) bool {
			return len([]rune(keywords[a])) > len([]rune(keywords[b]))
		})
		sorted[i] = CategoryKeywords{Category: ck.Category, Keywords: keywords}
	}
	return &Classifier{overrides: overrides, table: sorted}
}

// NewDefaultClassifier builds a classifier with the stock keyword
// configuration.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultOverrides, DefaultCategoryKeywords)
}

// Classify returns the best-guess category for an ingredient name.
// Matching is case-insensitive; names nothing matches fall back to
// CategoryOther.
func (c *Classifier) Classify(name string) string {
	lower := strings.ToLower(name)

	for _, o := range c.overrides {
		if strings.Contains(lower, strings.ToLower(o.Keyword)) {
			return o.Category
		}
	}

	for _, ck := range c.table {
		for _, keyword := range ck.Keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return ck.Category
			}
		}
	}

	return CategoryOther
}
