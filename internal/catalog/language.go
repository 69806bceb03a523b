package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed languages.toml
var languagesTOML []byte

// Language is a translation language the catalog can filter by.
type Language struct {
	Code string `toml:"code"`
	Name string `toml:"name"`
}

type languageTable struct {
	Default   string     `toml:"default"`
	Languages []Language `toml:"language"`
}

var languages = mustLoadLanguages()

func mustLoadLanguages() languageTable {
	var table languageTable
	if err := toml.Unmarshal(languagesTOML, &table); err != nil {
		panic(fmt.Sprintf("catalog: embedded languages.toml: %v", err))
	}
	return table
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages.Languages))
	copy(out, languages.Languages)
	return out
}

// LookupLanguage finds a language by code. Unknown codes report false.
func LookupLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range languages.Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// DefaultLanguage is the language used when configuration names none.
func DefaultLanguage() Language {
	l, ok := LookupLanguage(languages.Default)
	if !ok && len(languages.Languages) > 0 {
		return languages.Languages[0]
	}
	return l
}

// NextLanguage cycles through the table after l.
func NextLanguage(l Language) Language {
	all := languages.Languages
	for i, candidate := range all {
		if candidate.Code == l.Code {
			return all[(i+1)%len(all)]
		}
	}
	return DefaultLanguage()
}
