package vixen

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/John-Robertt/vixenscrape/internal/apollo"
	"github.com/John-Robertt/vixenscrape/internal/domain"
)

var testRef = domain.SceneRef{Site: "example.com", Studio: "example", Slug: "some-scene"}

const testInputURL = "https://www.example.com/videos/some-scene"

func sceneOf(t *testing.T, rec string) apollo.Scene {
	t.Helper()
	g := apollo.NewGraph([]byte(`{"k":` + rec + `}`))
	s, ok := g.Scene("k")
	if !ok {
		t.Fatalf("构造 scene 失败：%s", rec)
	}
	return s
}

func keysOf(t *testing.T, s domain.Scrape) map[string]json.RawMessage {
	t.Helper()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("json.Unmarshal 失败：%v", err)
	}
	return m
}

func TestNormalize_EmptyRecordOnlyStudio(t *testing.T) {
	got := Normalize(sceneOf(t, `{}`), testRef, testInputURL)
	want := domain.Scrape{Studio: &domain.Named{Name: "example"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("期望 %+v，实际 %+v", want, got)
	}
}

// 每个可选字段单独出现/缺失/为空时，只影响自己的 key。
// false、0、[]、{} 这类非字符串的“空”值不能变成 "false"/"0"/"[]" 之类的占位文本。
func TestNormalize_NonStringValuesOmitted(t *testing.T) {
	rec := `{
		"title":false,
		"description":[],
		"releaseDate":0,
		"models":[{"name":0},{"name":{}}],
		"categories":[{"name":true}],
		"images":{"poster":[{"src":[]}]}
	}`
	got := Normalize(sceneOf(t, rec), testRef, testInputURL)
	want := domain.Scrape{Studio: &domain.Named{Name: "example"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("期望 %+v，实际 %+v", want, got)
	}
}

func TestNormalize_EachFieldIndependently(t *testing.T) {
	cases := []struct {
		name    string
		rec     string
		key     string
		present bool
	}{
		{"title", `{"title":"T"}`, "title", true},
		{"title empty", `{"title":""}`, "title", false},
		{"title null", `{"title":null}`, "title", false},
		{"date", `{"releaseDate":"2020-05-01T00:00:00Z"}`, "date", true},
		{"date empty", `{"releaseDate":""}`, "date", false},
		{"details", `{"description":"D"}`, "details", true},
		{"details empty", `{"description":""}`, "details", false},
		{"url", `{"absoluteUrl":"//x.com/videos/a"}`, "url", true},
		{"url absent", `{}`, "url", false},
		{"performers", `{"models":[{"name":"A"}]}`, "performers", true},
		{"performers empty", `{"models":[]}`, "performers", false},
		{"performers nameless", `{"models":[{"name":""},{}]}`, "performers", false},
		{"tags", `{"categories":[{"name":"C"}]}`, "tags", true},
		{"tags empty", `{"categories":[]}`, "tags", false},
		{"image", `{"images":{"poster":[{"src":"a"}]}}`, "image", true},
		{"image empty poster", `{"images":{"poster":[]}}`, "image", false},
		{"image no poster", `{"images":{}}`, "image", false},
	}
	all := []string{"title", "date", "details", "url", "performers", "tags", "image"}

	for _, c := range cases {
		m := keysOf(t, Normalize(sceneOf(t, c.rec), testRef, testInputURL))
		if _, ok := m["studio"]; !ok {
			t.Fatalf("%s：studio 必须始终存在", c.name)
		}
		for _, k := range all {
			_, ok := m[k]
			want := k == c.key && c.present
			if ok != want {
				t.Fatalf("%s：key %q 存在=%v，期望 %v（输出=%v）", c.name, k, ok, want, m)
			}
		}
		for k, v := range m {
			if string(v) == "null" {
				t.Fatalf("%s：不允许输出 null（key=%s）", c.name, k)
			}
		}
	}
}

func TestNormalize_AllFields(t *testing.T) {
	rec := `{
		"title":"T",
		"releaseDate":"2021-02-03T10:00:00Z",
		"description":"D",
		"absoluteUrl":"//www.example.com/videos/some-scene",
		"models":[{"name":"A"},{"name":"B"}],
		"categories":[{"name":"C"}],
		"images":{"poster":[{"src":"a"},{"src":"b"},{"src":"c"}]}
	}`
	got := Normalize(sceneOf(t, rec), testRef, testInputURL)
	want := domain.Scrape{
		Title:      "T",
		Date:       "2021-02-03",
		Details:    "D",
		URL:        "https://www.example.com/videos/some-scene",
		Studio:     &domain.Named{Name: "example"},
		Performers: []domain.Named{{Name: "A"}, {Name: "B"}},
		Tags:       []domain.Named{{Name: "C"}},
		Image:      "c",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("期望 %+v，实际 %+v", want, got)
	}
}

func TestNormalize_DateTruncation(t *testing.T) {
	cases := map[string]string{
		"2020-05-01T00:00:00Z": "2020-05-01",
		"2020-05-01":           "2020-05-01",
		"2020":                 "2020",
	}
	for in, want := range cases {
		got := Normalize(sceneOf(t, `{"releaseDate":"`+in+`"}`), testRef, testInputURL)
		if got.Date != want {
			t.Fatalf("输入 %q：期望 %q，实际 %q", in, want, got.Date)
		}
	}
}

func TestNormalize_ImageIsLastPoster(t *testing.T) {
	got := Normalize(sceneOf(t, `{"images":{"poster":[{"src":"a"},{"src":"b"},{"src":"c"}]}}`), testRef, testInputURL)
	if got.Image != "c" {
		t.Fatalf("期望 image=c，实际 %q", got.Image)
	}
}

func TestNormalize_URLRules(t *testing.T) {
	cases := []struct {
		rec  string
		want string
	}{
		{`{"absoluteUrl":"//www.example.com/videos/x"}`, "https://www.example.com/videos/x"},
		{`{"absoluteUrl":"https://www.example.com/videos/x"}`, "https://www.example.com/videos/x"},
		{`{"absoluteUrl":null}`, testInputURL},
		{`{"absoluteUrl":""}`, testInputURL},
		{`{"absoluteUrl":false}`, testInputURL},
		{`{}`, ""},
	}
	for _, c := range cases {
		got := Normalize(sceneOf(t, c.rec), testRef, testInputURL)
		if got.URL != c.want {
			t.Fatalf("记录 %s：期望 url=%q，实际 %q", c.rec, c.want, got.URL)
		}
	}
}
