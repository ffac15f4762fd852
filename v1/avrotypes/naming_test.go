package avrotypes

import (
	"reflect"
	"testing"
)

func TestExtractNames(t *testing.T) {
	tests := []struct {
		name          string
		typ           reflect.Type
		opts          []Option
		wantFullName  string
		wantNamespace string
		wantAliases   []string
	}{
		{
			name:          "natural name",
			typ:           reflect.TypeOf(plain{}),
			wantFullName:  "avrotypes.plain",
			wantNamespace: "avrotypes",
		},
		{
			name:          "natural name with namespace",
			typ:           reflect.TypeOf(plain{}),
			opts:          []Option{Namespace("com.example")},
			wantFullName:  "com.example.plain",
			wantNamespace: "com.example",
		},
		{
			name:          "dotted name",
			typ:           reflect.TypeOf(plain{}),
			opts:          []Option{Name("ns.Article")},
			wantFullName:  "ns.Article",
			wantNamespace: "ns",
		},
		{
			name:          "bare name has no namespace",
			typ:           reflect.TypeOf(plain{}),
			opts:          []Option{Name("Article"), Alias("Post", "legacy.Entry")},
			wantFullName:  "Article",
			wantNamespace: "",
			wantAliases:   []string{"Post", "legacy.Entry"},
		},
		{
			name:          "bare name with namespace",
			typ:           reflect.TypeOf(plain{}),
			opts:          []Option{Name("Article"), Namespace("ns"), Alias("Post")},
			wantFullName:  "ns.Article",
			wantNamespace: "ns",
			wantAliases:   []string{"ns.Post"},
		},
		{
			name: "grouped aliases",
			typ:  reflect.TypeOf(plain{}),
			opts: []Option{
				Name("ns.Article"),
				Aliases(Alias("Post"), Alias("legacy.Entry"), Aliases(Alias("Story"))),
				Alias("Post"),
			},
			wantFullName:  "ns.Article",
			wantNamespace: "ns",
			wantAliases:   []string{"ns.Post", "legacy.Entry", "ns.Story"},
		},
		{
			name:          "alias equal to canonical name is dropped",
			typ:           reflect.TypeOf(plain{}),
			opts:          []Option{Name("ns.Article"), Alias("Article")},
			wantFullName:  "ns.Article",
			wantNamespace: "ns",
		},
		{
			name:          "methods",
			typ:           reflect.TypeOf(methodNamed{}),
			wantFullName:  "news.Headline",
			wantNamespace: "news",
			wantAliases:   []string{"news.Title", "archive.Heading"},
		},
		{
			name:          "options win over methods",
			typ:           reflect.TypeOf(&methodNamed{}),
			opts:          []Option{Name("Story")},
			wantFullName:  "news.Story",
			wantNamespace: "news",
			wantAliases:   []string{"news.Title", "archive.Heading"},
		},
		{
			name:          "declared schema",
			typ:           reflect.TypeOf(invoice{}),
			opts:          []Option{Alias("Receipt")},
			wantFullName:  "billing.Invoice",
			wantNamespace: "billing",
			wantAliases:   []string{"billing.Receipt", "billing.Bill"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := ExtractNames(tt.typ, tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if names.FullName() != tt.wantFullName {
				t.Fatalf("expected full name %q, got %q", tt.wantFullName, names.FullName())
			}
			if names.Namespace != tt.wantNamespace {
				t.Fatalf("expected namespace %q, got %q", tt.wantNamespace, names.Namespace)
			}
			if len(names.Aliases) != len(tt.wantAliases) {
				t.Fatalf("expected aliases %v, got %v", tt.wantAliases, names.Aliases)
			}
			for i := range tt.wantAliases {
				if names.Aliases[i] != tt.wantAliases[i] {
					t.Fatalf("expected aliases %v, got %v", tt.wantAliases, names.Aliases)
				}
			}
		})
	}
}

func TestExtractNamesNilType(t *testing.T) {
	if _, err := ExtractNames(nil); err != ErrNilType {
		t.Fatalf("expected ErrNilType, got %v", err)
	}
}

func TestNameSetAll(t *testing.T) {
	names := NameSet{Name: "Article", Namespace: "ns", Aliases: []string{"ns.Post"}}
	all := names.All()
	if len(all) != 2 || all[0] != "ns.Article" || all[1] != "ns.Post" {
		t.Fatalf("unexpected names %v", all)
	}
}
