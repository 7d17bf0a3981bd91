package graph

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidadaoai/sentinela/pkg/models"
)

func contractResult(endpoint string, cnpj string, value float64) models.RawResult {
	return models.RawResult{
		SourceEndpointID: endpoint,
		FetchedAt:        time.Now(),
		Payload: map[string]any{
			"contract_number":   "CT-001",
			"supplier_cnpj":     cnpj,
			"organization_code": "ORG-1",
			"organization_name": "Secretaria de Saúde",
			"value":             value,
			"uf":                "SP",
			"municipality":      "Campinas",
		},
	}
}

func TestIngest_ContractProducesSupplierOrgLocationNodes(t *testing.T) {
	g := New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", 1000)))

	assert.Len(t, g.NodesByType(models.NodeTypeContract), 1)
	assert.Len(t, g.NodesByType(models.NodeTypeSupplier), 1)
	assert.Len(t, g.NodesByType(models.NodeTypeOrganization), 1)
	assert.Len(t, g.NodesByType(models.NodeTypeLocation), 1)
	assert.Len(t, g.EdgesByRelationship(models.RelationshipContractedBy), 1)
	assert.Len(t, g.EdgesByRelationship(models.RelationshipManagedBy), 1)
	assert.Len(t, g.EdgesByRelationship(models.RelationshipLocatedIn), 1)
}

func TestIngest_DuplicateContractMergesNotDuplicates(t *testing.T) {
	g := New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", 1000)))
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, contractResult("tce-sp", "11222333000181", 1000)))

	contracts := g.NodesByType(models.NodeTypeContract)
	require.Len(t, contracts, 1)
	assert.ElementsMatch(t, []string{"portal", "tce-sp"}, contracts[0].Provenance)

	edges := g.EdgesByRelationship(models.RelationshipContractedBy)
	require.Len(t, edges, 1)
	assert.Equal(t, 2, edges[0].Weight)
}

func TestIngest_UnknownCapabilityIsNoop(t *testing.T) {
	g := New()
	err := g.Ingest(models.Capability("unknown"), models.RawResult{Payload: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, 0, len(g.Nodes()))
}

func TestIngest_AfterFreezeReturnsErrFrozen(t *testing.T) {
	g := New()
	g.Freeze()
	err := g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", 1000))
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestIngest_SanctionsAddSuspiciousLink(t *testing.T) {
	g := New()
	err := g.Ingest(models.CapabilitySearchSanctions, models.RawResult{
		SourceEndpointID: "sanctions-api",
		Payload: map[string]any{
			"cnpj":                           "11222333000181",
			"sanctioning_organization_code":  "CGU",
			"sanction_type":                   "debarment",
			"reason":                          "fraud",
		},
	})
	require.NoError(t, err)
	links := g.EdgesByRelationship(models.RelationshipSuspiciousLink)
	require.Len(t, links, 1)
	assert.Equal(t, "fraud", links[0].Attributes["reason"])
}

func TestNeighbors_FiltersByRelationshipAndDirection(t *testing.T) {
	g := New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", 1000)))
	contract := g.NodesByType(models.NodeTypeContract)[0]

	all := g.Neighbors(contract.NodeID, "")
	assert.Len(t, all, 3)

	supplierOnly := g.Neighbors(contract.NodeID, models.RelationshipContractedBy)
	require.Len(t, supplierOnly, 1)
	assert.Equal(t, supplierNodeID("11222333000181"), supplierOnly[0])
}

func TestShortestPath_FindsDirectAndMultiHop(t *testing.T) {
	g := New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", 1000)))
	contract := g.NodesByType(models.NodeTypeContract)[0]
	supplierID := supplierNodeID("11222333000181")
	orgID := orgNodeID("ORG-1")

	path := g.ShortestPath(contract.NodeID, supplierID, 3)
	assert.Equal(t, []string{contract.NodeID, supplierID}, path)

	noPath := g.ShortestPath(supplierID, orgID, 3)
	assert.Nil(t, noPath)
}

func TestSummary_CountsByType(t *testing.T) {
	g := New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", 1000)))
	summary := g.Summary()
	assert.Equal(t, 4, summary.NodeCount)
	assert.Equal(t, 3, summary.EdgeCount)
	assert.Equal(t, 1, summary.ByNodeType[string(models.NodeTypeContract)])
}

func TestIngest_ConcurrentIsSafe(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", float64(i)))
		}(i)
	}
	wg.Wait()
	assert.Len(t, g.NodesByType(models.NodeTypeContract), 1)
}

func TestNodesAndEdges_AreCanonicallyOrdered(t *testing.T) {
	g := New()
	require.NoError(t, g.Ingest(models.CapabilitySearchContracts, contractResult("portal", "11222333000181", 1000)))
	first := g.Nodes()
	second := g.Nodes()
	assert.Equal(t, first, second)
}
