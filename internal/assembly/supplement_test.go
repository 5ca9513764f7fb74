package assembly

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepaas/internal/ident"
	"stepaas/internal/resolver"
	"stepaas/internal/step"
)

// auxDocument carries one annotation ("Torque"/"10 Nm") fully linked to its
// local product "Bracket-1".
const auxDocument = `DATA;
#10 = PRODUCT('Bracket-1','bracket export','',(#2));
#20 = PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE('A','',#10,.MADE.);
#30 = PRODUCT_DEFINITION('design','',#20,#5);
#50 = DESCRIPTIVE_REPRESENTATION_ITEM('Torque','10 Nm');
#60 = REPRESENTATION('annotations',(#50),#6);
#70 = PROPERTY_DEFINITION('material','',#30);
#80 = PROPERTY_DEFINITION_REPRESENTATION(#70,#60);
ENDSEC;
`

func supplementFixture(t *testing.T) (*Supplementer, *Registry, *Tree) {
	t.Helper()
	doc := step.Extract("main.stp", `DATA;
#10 = PRODUCT('Bracket','mounting bracket','',(#2));
#11 = PRODUCT('Jaw','','',(#2));
ENDSEC;
`)
	alloc := ident.NewAllocator()
	reg := NewRegistry(alloc)
	reg.RegisterProducts(doc, resolver.NewResolution(doc))
	tree := BuildTree(reg, nil, alloc)
	return NewSupplementer(reg, false, nil), reg, tree
}

func writeAux(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSupplementer_MergesByFilename(t *testing.T) {
	s, reg, tree := supplementFixture(t)
	path := writeAux(t, t.TempDir(), "Bracket-1.stp", auxDocument)

	result, err := s.SupplementFile(path, tree)
	require.NoError(t, err)

	bracket, _ := reg.ByNormalizedName("Bracket")
	require.Equal(t, bracket, result.Matched)
	assert.Equal(t, 1, result.Added)
	require.Len(t, bracket.Annotations, 1)
	assert.Equal(t, Annotation{Name: "Torque", Description: "10 Nm"}, bracket.Annotations[0])
	assert.Equal(t, []string{path}, bracket.AnnotationFiles)
}

func TestSupplementer_ReprocessingIsNoOp(t *testing.T) {
	s, reg, tree := supplementFixture(t)
	path := writeAux(t, t.TempDir(), "Bracket-1.stp", auxDocument)

	_, err := s.SupplementFile(path, tree)
	require.NoError(t, err)
	second, err := s.SupplementFile(path, tree)
	require.NoError(t, err)

	bracket, _ := reg.ByNormalizedName("Bracket")
	assert.Equal(t, 0, second.Added)
	assert.Len(t, bracket.Annotations, 1)
	assert.Len(t, bracket.AnnotationFiles, 1)
}

func TestSupplementer_IdenticalAnnotationFromTwoDocumentsStoredOnce(t *testing.T) {
	s, reg, tree := supplementFixture(t)
	dir := t.TempDir()
	first := writeAux(t, dir, "Bracket-1.stp", auxDocument)
	second := writeAux(t, dir, "Bracket-2.stp", auxDocument)

	_, err := s.SupplementFile(first, tree)
	require.NoError(t, err)
	result, err := s.SupplementFile(second, tree)
	require.NoError(t, err)

	bracket, _ := reg.ByNormalizedName("Bracket")
	assert.Equal(t, 0, result.Added)
	assert.Len(t, bracket.Annotations, 1, "identical (name, description) pair stored once")
	assert.Len(t, bracket.AnnotationFiles, 2, "both documents recorded as sources")
}

func TestSupplementer_NoMatchIsReportedNotFatal(t *testing.T) {
	s, _, tree := supplementFixture(t)
	path := writeAux(t, t.TempDir(), "Unknown-7.stp", auxDocument)

	result, err := s.SupplementFile(path, tree)
	require.NoError(t, err)
	assert.Nil(t, result.Matched)
	assert.Equal(t, 1, result.Candidates)
}

func TestSupplementer_PreScanSkipsAnnotationFreeDocuments(t *testing.T) {
	s, _, tree := supplementFixture(t)
	path := writeAux(t, t.TempDir(), "Bracket-1.stp", `DATA;
#10 = PRODUCT('Bracket-1','no annotations here','',(#2));
ENDSEC;
`)

	result, err := s.SupplementFile(path, tree)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Nil(t, result.Matched)
}

func TestSupplementer_UnreadableDocumentReturnsError(t *testing.T) {
	s, _, tree := supplementFixture(t)

	_, err := s.SupplementFile(filepath.Join(t.TempDir(), "missing.stp"), tree)
	assert.Error(t, err)
}
