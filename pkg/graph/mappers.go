package graph

import (
	"fmt"
	"hash/fnv"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// Payload field names are the normalized shape every endpoint advertising
// a given capability is expected to produce (spec §4.7). A federation
// client adapter is responsible for translating a provider's native
// response into this shape before the record reaches the graph.

func getString(p map[string]any, key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getFloat(p map[string]any, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// priceOrValue falls back to the contract's total value when no explicit
// per-unit price is present, so PriceDeviationAnalyzer always has a number
// to compare within a cohort.
func priceOrValue(p map[string]any) float64 {
	if v, ok := p["price_per_unit"]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return getFloat(p, "value")
}

// contractNodeID hashes the fields that make a contract record unique
// across repeated ingests of the same contract from different endpoints,
// so duplicates merge instead of producing parallel nodes.
func contractNodeID(p map[string]any) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", getString(p, "contract_number"), getString(p, "supplier_cnpj"), getString(p, "organization_code"))
	return fmt.Sprintf("contract:%x", h.Sum64())
}

func supplierNodeID(cnpj string) string    { return "supplier:" + cnpj }
func personNodeID(cpf string) string       { return "person:" + cpf }
func orgNodeID(code string) string         { return "org:" + code }
func locationNodeID(uf, municipality string) string {
	if municipality == "" {
		return "location:" + uf
	}
	return "location:" + uf + ":" + municipality
}
func biddingNodeID(p map[string]any) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s", getString(p, "process_number"), getString(p, "organization_code"))
	return fmt.Sprintf("bidding:%x", h.Sum64())
}

func newEdgeID(from, to string, rel models.Relationship) string {
	return edgeKey(from, to, rel)
}

// mapContracts shapes a search_contracts record into a Contract node, its
// Supplier and Organization nodes, and the ContractedBy/ManagedBy edges
// connecting them (spec §4.7).
func mapContracts(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	contractID := contractNodeID(p)
	nodes := []models.GraphNode{{
		NodeID: contractID,
		Type:   models.NodeTypeContract,
		Attributes: map[string]any{
			"number":         getString(p, "contract_number"),
			"value":          getFloat(p, "value"),
			"object":         getString(p, "object"),
			"category":       getString(p, "category"),
			"uf":             getString(p, "uf"),
			"organization_code": getString(p, "organization_code"),
			"supplier_cnpj":  getString(p, "supplier_cnpj"),
			"signed_at":      getString(p, "signed_at"),
			"price_per_unit": priceOrValue(p),
		},
	}}
	var edges []models.GraphEdge

	if cnpj := getString(p, "supplier_cnpj"); cnpj != "" {
		supplierID := supplierNodeID(cnpj)
		nodes = append(nodes, models.GraphNode{
			NodeID:     supplierID,
			Type:       models.NodeTypeSupplier,
			Attributes: map[string]any{"cnpj": cnpj, "name": getString(p, "supplier_name")},
		})
		edges = append(edges, models.GraphEdge{
			EdgeID:       newEdgeID(contractID, supplierID, models.RelationshipContractedBy),
			From:         contractID,
			To:           supplierID,
			Relationship: models.RelationshipContractedBy,
		})
	}

	if orgCode := getString(p, "organization_code"); orgCode != "" {
		orgID := orgNodeID(orgCode)
		nodes = append(nodes, models.GraphNode{
			NodeID:     orgID,
			Type:       models.NodeTypeOrganization,
			Attributes: map[string]any{"code": orgCode, "name": getString(p, "organization_name")},
		})
		edges = append(edges, models.GraphEdge{
			EdgeID:       newEdgeID(contractID, orgID, models.RelationshipManagedBy),
			From:         contractID,
			To:           orgID,
			Relationship: models.RelationshipManagedBy,
		})
	}

	if uf := getString(p, "uf"); uf != "" {
		locID := locationNodeID(uf, getString(p, "municipality"))
		nodes = append(nodes, models.GraphNode{
			NodeID:     locID,
			Type:       models.NodeTypeLocation,
			Attributes: map[string]any{"uf": uf, "municipality": getString(p, "municipality")},
		})
		edges = append(edges, models.GraphEdge{
			EdgeID:       newEdgeID(contractID, locID, models.RelationshipLocatedIn),
			From:         contractID,
			To:           locID,
			Relationship: models.RelationshipLocatedIn,
		})
	}

	return nodes, edges, nil
}

// mapSupplier shapes a lookup_cnpj record into a Supplier node (spec §4.7).
func mapSupplier(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	cnpj := getString(p, "cnpj")
	if cnpj == "" {
		return nil, nil, nil
	}
	return []models.GraphNode{{
		NodeID: supplierNodeID(cnpj),
		Type:   models.NodeTypeSupplier,
		Attributes: map[string]any{
			"cnpj":        cnpj,
			"name":        getString(p, "name"),
			"status":      getString(p, "status"),
			"founded_at":  getString(p, "founded_at"),
		},
	}}, nil, nil
}

// mapPerson shapes a lookup_cpf record into a Person node (spec §4.7).
func mapPerson(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	cpf := getString(p, "cpf")
	if cpf == "" {
		return nil, nil, nil
	}
	return []models.GraphNode{{
		NodeID:     personNodeID(cpf),
		Type:       models.NodeTypePerson,
		Attributes: map[string]any{"cpf": cpf, "name": getString(p, "name")},
	}}, nil, nil
}

// mapBudget shapes a fetch_budget record into an Organization node carrying
// budget attributes (spec §4.7); it contributes no edges on its own.
func mapBudget(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	orgCode := getString(p, "organization_code")
	if orgCode == "" {
		return nil, nil, nil
	}
	return []models.GraphNode{{
		NodeID: orgNodeID(orgCode),
		Type:   models.NodeTypeOrganization,
		Attributes: map[string]any{
			"code":            orgCode,
			"name":            getString(p, "organization_name"),
			"allocated_value": getFloat(p, "allocated_value"),
			"executed_value":  getFloat(p, "executed_value"),
		},
	}}, nil, nil
}

// mapBiddings shapes a fetch_biddings record into a BiddingProcess node and
// a PartnerOf edge to each participating Supplier (spec §4.7) — the basis
// for CartelCliqueAnalyzer's co-bidding graph.
func mapBiddings(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	biddingID := biddingNodeID(p)
	nodes := []models.GraphNode{{
		NodeID: biddingID,
		Type:   models.NodeTypeBiddingProcess,
		Attributes: map[string]any{
			"process_number": getString(p, "process_number"),
			"modality":       getString(p, "modality"),
		},
	}}
	var edges []models.GraphEdge

	bidders, _ := p["bidder_cnpjs"].([]any)
	for _, b := range bidders {
		cnpj, ok := b.(string)
		if !ok || cnpj == "" {
			continue
		}
		supplierID := supplierNodeID(cnpj)
		nodes = append(nodes, models.GraphNode{
			NodeID:     supplierID,
			Type:       models.NodeTypeSupplier,
			Attributes: map[string]any{"cnpj": cnpj},
		})
		edges = append(edges, models.GraphEdge{
			EdgeID:       newEdgeID(supplierID, biddingID, models.RelationshipPartnerOf),
			From:         supplierID,
			To:           biddingID,
			Relationship: models.RelationshipPartnerOf,
		})
	}

	return nodes, edges, nil
}

// mapSanctions shapes a search_sanctions record into a SuspiciousLink edge
// from the sanctioned Supplier to the sanctioning Organization (spec §4.7).
func mapSanctions(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	cnpj := getString(p, "cnpj")
	orgCode := getString(p, "sanctioning_organization_code")
	if cnpj == "" {
		return nil, nil, nil
	}
	supplierID := supplierNodeID(cnpj)
	nodes := []models.GraphNode{{
		NodeID: supplierID,
		Type:   models.NodeTypeSupplier,
		Attributes: map[string]any{
			"cnpj":            cnpj,
			"sanction_type":   getString(p, "sanction_type"),
			"sanction_reason": getString(p, "reason"),
		},
	}}
	if orgCode == "" {
		return nodes, nil, nil
	}
	orgID := orgNodeID(orgCode)
	nodes = append(nodes, models.GraphNode{NodeID: orgID, Type: models.NodeTypeOrganization, Attributes: map[string]any{"code": orgCode}})
	edges := []models.GraphEdge{{
		EdgeID:       newEdgeID(supplierID, orgID, models.RelationshipSuspiciousLink),
		From:         supplierID,
		To:           orgID,
		Relationship: models.RelationshipSuspiciousLink,
		Attributes:   map[string]any{"reason": getString(p, "reason")},
	}}
	return nodes, edges, nil
}

// mapPayments shapes a fetch_payments record into a DonatedTo edge from
// Organization to Supplier, carrying the paid value for
// PaymentMismatchAnalyzer to compare against the contracted value (spec
// §4.7/§4.8).
func mapPayments(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	cnpj := getString(p, "supplier_cnpj")
	orgCode := getString(p, "organization_code")
	if cnpj == "" || orgCode == "" {
		return nil, nil, nil
	}
	supplierID := supplierNodeID(cnpj)
	orgID := orgNodeID(orgCode)
	nodes := []models.GraphNode{
		{NodeID: supplierID, Type: models.NodeTypeSupplier, Attributes: map[string]any{"cnpj": cnpj}},
		{NodeID: orgID, Type: models.NodeTypeOrganization, Attributes: map[string]any{"code": orgCode}},
	}
	if contractNumber := getString(p, "contract_number"); contractNumber != "" {
		contractPayload := map[string]any{
			"contract_number":   contractNumber,
			"supplier_cnpj":     cnpj,
			"organization_code": orgCode,
		}
		nodes = append(nodes, models.GraphNode{
			NodeID:     contractNodeID(contractPayload),
			Type:       models.NodeTypeContract,
			Attributes: map[string]any{"paid_value": getFloat(p, "paid_value")},
		})
	}
	edges := []models.GraphEdge{{
		EdgeID:       newEdgeID(orgID, supplierID, models.RelationshipDonatedTo),
		From:         orgID,
		To:           supplierID,
		Relationship: models.RelationshipDonatedTo,
		Attributes: map[string]any{
			"contract_number": getString(p, "contract_number"),
			"paid_value":      getFloat(p, "paid_value"),
		},
	}}
	return nodes, edges, nil
}

// mapPopulation shapes a fetch_population record into a Location node
// carrying demographic attributes (spec §4.7); it contributes no edges on
// its own — GeographicAnalysis correlates it with contracts already
// ingested via LocatedIn edges.
func mapPopulation(result models.RawResult) ([]models.GraphNode, []models.GraphEdge, error) {
	p := result.Payload
	uf := getString(p, "uf")
	if uf == "" {
		return nil, nil, nil
	}
	return []models.GraphNode{{
		NodeID: locationNodeID(uf, getString(p, "municipality")),
		Type:   models.NodeTypeLocation,
		Attributes: map[string]any{
			"uf":           uf,
			"municipality": getString(p, "municipality"),
			"population":   getFloat(p, "population"),
		},
	}}, nil, nil
}
