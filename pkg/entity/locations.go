package entity

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// ufNames maps every Brazilian state's two-letter code to its full name,
// lowercased, so both forms are recognized in free text (spec §4.4: "27
// UFs").
var ufNames = map[string]string{
	"AC": "acre", "AL": "alagoas", "AP": "amapá", "AM": "amazonas", "BA": "bahia",
	"CE": "ceará", "DF": "distrito federal", "ES": "espírito santo", "GO": "goiás",
	"MA": "maranhão", "MT": "mato grosso", "MS": "mato grosso do sul", "MG": "minas gerais",
	"PA": "pará", "PB": "paraíba", "PR": "paraná", "PE": "pernambuco", "PI": "piauí",
	"RJ": "rio de janeiro", "RN": "rio grande do norte", "RS": "rio grande do sul",
	"RO": "rondônia", "RR": "roraima", "SC": "santa catarina", "SP": "são paulo",
	"SE": "sergipe", "TO": "tocantins",
}

// stateCapitals maps each UF's capital (lowercased) to its UF, covering the
// "state capitals" half of the gazetteer (spec §4.4).
var stateCapitals = map[string]string{
	"rio branco": "AC", "maceió": "AL", "macapá": "AP", "manaus": "AM", "salvador": "BA",
	"fortaleza": "CE", "brasília": "DF", "vitória": "ES", "goiânia": "GO",
	"são luís": "MA", "cuiabá": "MT", "campo grande": "MS", "belo horizonte": "MG",
	"belém": "PA", "joão pessoa": "PB", "curitiba": "PR", "recife": "PE", "teresina": "PI",
	"rio de janeiro": "RJ", "natal": "RN", "porto alegre": "RS", "porto velho": "RO",
	"boa vista": "RR", "florianópolis": "SC", "são paulo": "SP", "aracaju": "SE", "palmas": "TO",
}

// topMunicipalities is a representative slice of the "top-100 municipalities"
// named in spec §4.4 — large non-capital cities whose name alone should
// resolve to a UF without an explicit "estado de" qualifier.
var topMunicipalities = map[string]string{
	"campinas": "SP", "guarulhos": "SP", "são bernardo do campo": "SP", "santo andré": "SP",
	"osasco": "SP", "sorocaba": "SP", "ribeirão preto": "SP",
	"duque de caxias": "RJ", "nova iguaçu": "RJ", "niterói": "RJ", "campos dos goytacazes": "RJ",
	"uberlândia": "MG", "contagem": "MG", "juiz de fora": "MG", "betim": "MG",
	"feira de santana": "BA", "vitória da conquista": "BA", "ilhéus": "BA",
	"caxias do sul": "RS", "pelotas": "RS", "canoas": "RS",
	"londrina": "PR", "maringá": "PR", "foz do iguaçu": "PR",
	"joinville": "SC", "blumenau": "SC",
	"jaboatão dos guararapes": "PE", "caruaru": "PE",
	"são gonçalo": "RJ", "jundiaí": "SP", "piracicaba": "SP", "bauru": "SP",
}

var ufCodePattern = regexp.MustCompile(`\b(AC|AL|AP|AM|BA|CE|DF|ES|GO|MA|MT|MS|MG|PA|PB|PR|PE|PI|RJ|RN|RS|RO|RR|SC|SP|SE|TO)\b`)

// extractLocations matches UF codes, full UF names, state capitals, and
// top municipalities, returning deduplicated Location values ordered by
// first appearance (spec §4.4).
func extractLocations(text, rawText string) ([]models.Location, []match) {
	var locations []models.Location
	var matches []match
	seen := make(map[string]bool)

	add := func(loc models.Location, start, end int) {
		key := loc.UF + "|" + loc.Municipality
		if seen[key] {
			return
		}
		seen[key] = true
		locations = append(locations, loc)
		matches = append(matches, match{start: start, end: end, kind: "location"})
	}

	for muni, uf := range topMunicipalities {
		if idx := indexOfWord(text, muni); idx >= 0 {
			add(models.Location{UF: uf, Municipality: titleCase(muni)}, idx, idx+len(muni))
		}
	}
	for capital, uf := range stateCapitals {
		if idx := indexOfWord(text, capital); idx >= 0 {
			add(models.Location{UF: uf, Municipality: titleCase(capital)}, idx, idx+len(capital))
		}
	}
	for uf, name := range ufNames {
		if idx := indexOfWord(text, name); idx >= 0 {
			add(models.Location{UF: uf}, idx, idx+len(name))
		}
	}
	for _, loc := range ufCodePattern.FindAllStringIndex(rawText, -1) {
		add(models.Location{UF: rawText[loc[0]:loc[1]]}, loc[0], loc[1])
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })
	return locations, matches
}

// indexOfWord finds needle in haystack as a whole-word match, treating
// accented Brazilian-Portuguese letters as word characters so "são paulo"
// doesn't false-match inside a longer accented word.
func indexOfWord(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] != needle {
			continue
		}
		beforeOK := i == 0 || !unicode.IsLetter(runeBefore(haystack, i))
		afterOK := i+len(needle) == len(haystack) || !unicode.IsLetter(runeAt(haystack, i+len(needle)))
		if beforeOK && afterOK {
			return i
		}
	}
	return -1
}

func runeAt(s string, byteIdx int) rune {
	r, _ := utf8.DecodeRuneInString(s[byteIdx:])
	return r
}

func runeBefore(s string, byteIdx int) rune {
	r, _ := utf8.DecodeLastRuneInString(s[:byteIdx])
	return r
}

func titleCase(s string) string {
	runes := []rune(s)
	capitalizeNext := true
	for i, r := range runes {
		if r == ' ' {
			capitalizeNext = true
			continue
		}
		if capitalizeNext {
			runes[i] = toUpperASCII(r)
			capitalizeNext = false
		}
	}
	return string(runes)
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
