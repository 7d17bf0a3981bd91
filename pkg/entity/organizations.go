package entity

import "regexp"

// orgPrefixPattern matches the generic organization-name forms named in
// spec §4.4: "Ministério …", "Secretaria …", "Prefeitura de …". It captures
// up to five title-cased words following the prefix.
var orgPrefixPattern = regexp.MustCompile(`(?i)\b((?:Minist[ée]rio|Secretaria|Prefeitura)(?:\s+(?:de|da|do|dos|das))?(?:\s+[A-ZÀ-Ú][\wÀ-ÿ]*){1,5})`)

// orgWhitelist covers well-known federal bodies that don't fit the prefix
// pattern (spec §4.4).
var orgWhitelist = []string{
	"controladoria-geral da união", "tribunal de contas da união", "tcu", "cgu",
	"advocacia-geral da união", "receita federal",
}

func extractOrganizations(rawText, normalizedText string) ([]string, []match) {
	var orgs []string
	var matches []match
	seen := make(map[string]bool)

	for _, loc := range orgPrefixPattern.FindAllStringIndex(rawText, -1) {
		name := rawText[loc[0]:loc[1]]
		if !seen[normalizeFold(name)] {
			seen[normalizeFold(name)] = true
			orgs = append(orgs, name)
		}
		matches = append(matches, match{start: loc[0], end: loc[1], kind: "organization"})
	}

	for _, term := range orgWhitelist {
		if idx := indexOfWord(normalizedText, term); idx >= 0 {
			if !seen[term] {
				seen[term] = true
				orgs = append(orgs, titleCase(term))
			}
			matches = append(matches, match{start: idx, end: idx + len(term), kind: "organization"})
		}
	}

	return orgs, matches
}
