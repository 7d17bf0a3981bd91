package entity

// categoryWhitelist is the closed vocabulary spec §4.4 names for spending
// category extraction.
var categoryWhitelist = []string{
	"saúde", "educação", "infraestrutura", "segurança", "transporte",
	"habitação", "saneamento", "meio ambiente", "assistência social", "cultura",
}

func extractCategories(normalizedText string) []string {
	var found []string
	for _, cat := range categoryWhitelist {
		if indexOfWord(normalizedText, cat) >= 0 {
			found = append(found, cat)
		}
	}
	return found
}
