package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// RedClasses is the curated allow-list of red-wine composite labels.
var RedClasses = []string{
	"Bordeaux_Bordeaux-style Red Blend",
	"Burgundy_Pinot Noir",
	"California_Cabernet Sauvignon",
	"California_Pinot Noir",
	"California_Red Blend",
	"California_Syrah",
	"California_Zinfandel",
	"Mendoza Province_Malbec",
	"Northern Spain_Tempranillo",
	"Oregon_Pinot Noir",
	"Piedmont_Nebbiolo",
	"Tuscany_Red Blend",
	"Tuscany_Sangiovese",
	"Washington_Cabernet Sauvignon",
}

// WhiteClasses is the curated allow-list of white-wine composite labels.
var WhiteClasses = []string{
	"Alsace_Gewürztraminer",
	"Alsace_Riesling",
	"Burgundy_Chardonnay",
	"California_Chardonnay",
	"California_Sauvignon Blanc",
	"Loire Valley_Sauvignon Blanc",
	"Marlborough_Sauvignon Blanc",
	"Mosel_Riesling",
	"New York_Riesling",
	"Oregon_Pinot Gris",
	"Washington_Chardonnay",
	"Washington_Riesling",
}

// DefaultClassLists are the built-in allow-lists by name.
func DefaultClassLists() map[string][]string {
	return map[string][]string{
		"red":   append([]string(nil), RedClasses...),
		"white": append([]string(nil), WhiteClasses...),
	}
}

// ResolveClasses looks up an allow-list by name.
func ResolveClasses(lists map[string][]string, name string) ([]string, error) {
	if l, ok := lists[strings.ToLower(strings.TrimSpace(name))]; ok && len(l) > 0 {
		return l, nil
	}
	names := make([]string, 0, len(lists))
	for k := range lists {
		names = append(names, k)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown class list %q (have: %s)", name, strings.Join(names, ", "))
}
