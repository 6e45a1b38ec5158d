package gedcom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const individual = "0 @I1@ INDI\n1 NAME John /Smith/\n1 BIRT\n2 DATE 1 JAN 1900\n2 PLAC London\n1 OBJE @M1@\n1 FAMS @F1@"

func TestHeader(t *testing.T) {
	xref, tag := Header(individual)
	assert.Equal(t, "I1", xref)
	assert.Equal(t, "INDI", tag)

	xref, tag = Header("garbage")
	assert.Empty(t, xref)
	assert.Empty(t, tag)
}

func TestSetXref(t *testing.T) {
	assert.Equal(t, "0 @M7@ OBJE\n1 FILE a.jpg", SetXref("0 @new@ OBJE\n1 FILE a.jpg", "M7"))
}

func TestIsXref(t *testing.T) {
	assert.True(t, IsXref("I123"))
	assert.True(t, IsXref("X_1.a-b:c"))
	assert.False(t, IsXref(""))
	assert.False(t, IsXref("I 1"))
	assert.False(t, IsXref("@I1@"))
}

func TestPointers(t *testing.T) {
	want := []Pointer{{Tag: "OBJE", Target: "M1"}, {Tag: "FAMS", Target: "F1"}}
	if diff := cmp.Diff(want, Pointers(individual)); diff != "" {
		t.Errorf("Pointers() mismatch (-want +got):\n%s", diff)
	}
}

func TestFacts(t *testing.T) {
	facts := Facts(individual)
	require.Len(t, facts, 4)

	assert.Equal(t, "NAME", facts[0].Tag)
	assert.Equal(t, "John /Smith/", facts[0].Value)
	assert.Equal(t, "BIRT", facts[1].Tag)
	assert.Equal(t, "1 BIRT\n2 DATE 1 JAN 1900\n2 PLAC London", facts[1].Gedcom)
	assert.Equal(t, "M1", facts[2].Target)
	assert.Equal(t, FactID(facts[3].Gedcom), facts[3].ID)

	assert.Len(t, FactsByTag(individual, "OBJE"), 1)
	assert.Empty(t, FactsByTag(individual, "DEAT"))
}

func TestUpdateAndDeleteFact(t *testing.T) {
	birth := Facts(individual)[1]

	updated, ok := UpdateFact(individual, birth.ID, birth.Gedcom+"\n2 OBJE @M1@")
	require.True(t, ok)
	assert.Contains(t, updated, "2 PLAC London\n2 OBJE @M1@\n1 OBJE @M1@")

	obje := FactsByTag(updated, "OBJE")[0]
	deleted, ok := DeleteFact(updated, obje.ID)
	require.True(t, ok)
	assert.Equal(t,
		"0 @I1@ INDI\n1 NAME John /Smith/\n1 BIRT\n2 DATE 1 JAN 1900\n2 PLAC London\n2 OBJE @M1@\n1 FAMS @F1@",
		deleted)

	_, ok = DeleteFact(individual, "nope")
	assert.False(t, ok)
}

func TestAddFact(t *testing.T) {
	assert.Equal(t, "0 @I1@ INDI\n1 OBJE @M2@", AddFact("0 @I1@ INDI\n", "1 OBJE @M2@"))
}

func TestCont(t *testing.T) {
	sub := "1 NOTE first\n2 CONT second\n2 CONC  half\n3 CONT deeper"
	assert.Equal(t, "\nsecond half", Cont(2, sub))
	assert.Empty(t, Cont(5, sub))
}

func TestXrefs(t *testing.T) {
	assert.Equal(t, []string{"I1", "M2"}, Xrefs("1 ASSO @I1@ and @M2@ but not @ x@"))
}

func TestIsFileExternal(t *testing.T) {
	assert.True(t, IsFileExternal("FILE https://example.com/a.jpg"))
	assert.False(t, IsFileExternal("FILE photos/a.jpg"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "John Smith", Name(individual))
	assert.Empty(t, Name("0 @F1@ FAM"))
}

func TestMediaFile(t *testing.T) {
	file, title, kind := MediaFile("0 @M1@ OBJE\n1 FILE photos/a.jpg\n2 FORM jpg\n3 TYPE photo\n2 TITL Wedding")
	assert.Equal(t, "photos/a.jpg", file)
	assert.Equal(t, "Wedding", title)
	assert.Equal(t, "photo", kind)

	file, title, kind = MediaFile("0 @M2@ OBJE")
	assert.Empty(t, file+title+kind)
}
