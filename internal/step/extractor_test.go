package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('Gripper assembly export','2;1'));
FILE_NAME('gripper.stp','2024-03-18T09:12:44',('J. Weber'),('Example GmbH'),
  'CAD Preprocessor 9.1','ExampleCAD 2024','');
FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }'));
ENDSEC;
DATA;
#10 = PRODUCT('Gripper','Pneumatic gripper assembly','',(#2));
#11 = PRODUCT('Bracket','Mounting bracket','',(#2));
#12 = PRODUCT('M6 Screw','Hex socket screw','',(#2));
#20 = PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE('A','first release',#10,.MADE.);
#21 = PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE('A','',#11,.MADE.);
#22 = PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE('A','',#12,.MADE.);
#30 = PRODUCT_DEFINITION('design','',#20,#5);
#31 = PRODUCT_DEFINITION('design','',#21,#5);
#32 = PRODUCT_DEFINITION('design','',#22,#5);
#40 = NEXT_ASSEMBLY_USAGE_OCCURRENCE('NAUO1','','',#30,#31,$,'1');
#41 = NEXT_ASSEMBLY_USAGE_OCCURRENCE('NAUO2','','',
  #30,
  #32,$,'2');
#50 = DESCRIPTIVE_REPRESENTATION_ITEM('Torque','10 Nm');
#51 = DESCRIPTIVE_REPRESENTATION_ITEM('Material','Stainless steel');
#60 = REPRESENTATION('annotations',(#50,#51),#6);
#70 = PROPERTY_DEFINITION('material property','',#31);
#80 = PROPERTY_DEFINITION_REPRESENTATION(#70,#60);
#90 = VENDOR_THING('unmodeled',(#10);
ENDSEC;
END-ISO-10303-21;
`

func TestExtract_TypedRecords(t *testing.T) {
	doc := Extract("gripper.stp", sampleDocument)

	t.Run("products", func(t *testing.T) {
		require.Len(t, doc.Products, 3)
		assert.Equal(t, "Gripper", doc.Products[10].Name)
		assert.Equal(t, "Pneumatic gripper assembly", doc.Products[10].Description)
		assert.Equal(t, []NativeID{10, 11, 12}, doc.ProductOrder)
	})

	t.Run("reference chain records", func(t *testing.T) {
		assert.Equal(t, NativeID(10), doc.Formations[20].ProductRef)
		assert.Equal(t, NativeID(20), doc.ProductDefinitions[30].FormationRef)
		assert.Equal(t, NativeID(31), doc.PropertyDefinitions[70].DefinitionRef)
		pdr := doc.PropertyDefinitionReprs[80]
		assert.Equal(t, NativeID(70), pdr.DefinitionRef)
		assert.Equal(t, NativeID(60), pdr.RepresentationRef)
	})

	t.Run("representation item refs", func(t *testing.T) {
		repr := doc.Representations[60]
		assert.Equal(t, []NativeID{50, 51}, repr.ItemRefs)
		assert.Equal(t, NativeID(6), repr.ContextRef)
	})

	t.Run("multi-line usage statement", func(t *testing.T) {
		require.Len(t, doc.Usages, 2)
		u := doc.Usages[41]
		assert.Equal(t, NativeID(30), u.RelatingRef)
		assert.Equal(t, NativeID(32), u.RelatedRef)
		assert.Equal(t, []NativeID{40, 41}, doc.UsageOrder)
	})

	t.Run("header", func(t *testing.T) {
		assert.Equal(t, "Gripper assembly export", doc.Header.Description)
		assert.Equal(t, "gripper.stp", doc.Header.Name)
		assert.Equal(t, "J. Weber", doc.Header.Author)
		assert.Equal(t, "Example GmbH", doc.Header.Organization)
		assert.Contains(t, doc.Header.Schema, "AUTOMOTIVE_DESIGN")
	})
}

func TestExtract_AbsentKindsYieldEmptyMaps(t *testing.T) {
	doc := Extract("empty.stp", "ISO-10303-21;\nDATA;\nENDSEC;\n")

	assert.Empty(t, doc.Products)
	assert.Empty(t, doc.Annotations)
	assert.Empty(t, doc.Usages)
	assert.NotNil(t, doc.Products)
	assert.NotNil(t, doc.Usages)
}

func TestExtract_MalformedStatementDropped(t *testing.T) {
	content := `DATA;
#1 = PRODUCT('Valid','part','',(#2));
#2 = PRODUCT(Broken, no quotes at all
#3 = PRODUCT('AlsoValid','part','',(#2));
ENDSEC;
`
	doc := Extract("broken.stp", content)

	require.Len(t, doc.Products, 2)
	assert.Equal(t, "Valid", doc.Products[1].Name)
	assert.Equal(t, "AlsoValid", doc.Products[3].Name)
}

func TestHasAnnotationData(t *testing.T) {
	assert.True(t, HasAnnotationData("#1 = DESCRIPTIVE_REPRESENTATION_ITEM('a','b');"))
	assert.True(t, HasAnnotationData("#1 = PROPERTY_DEFINITION_REPRESENTATION(#2,#3);"))
	assert.False(t, HasAnnotationData("#1 = PRODUCT('a','b','',(#2));"))
}
