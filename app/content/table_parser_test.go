package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTableParserBasicTable(t *testing.T) {
	parser := NewTableParser()

	markdown := `| Fecha | Canal | Título |
|---|---|---|
| 2024-01-01 | IG | Post 1 |
| 2024-01-02 | FB | Post 2 |`

	rows := parser.Run(markdown)

	expected := []SocialRow{
		{FieldDate: "2024-01-01", FieldChannel: "IG", FieldTitle: "Post 1"},
		{FieldDate: "2024-01-02", FieldChannel: "FB", FieldTitle: "Post 2"},
	}
	if diff := cmp.Diff(expected, rows); diff != "" {
		t.Errorf("Unexpected rows (-want +got):\n%s", diff)
	}
}

func TestTableParserNoTable(t *testing.T) {
	parser := NewTableParser()

	for _, input := range []string{"", "just some text\nwithout a table", "\n\n   \n"} {
		rows := parser.Run(input)
		if rows == nil {
			t.Errorf("Expected empty slice for %q, got nil", input)
		}
		if len(rows) != 0 {
			t.Errorf("Expected no rows for %q, got %d", input, len(rows))
		}
	}
}

func TestTableParserHeaderOnly(t *testing.T) {
	parser := NewTableParser()

	rows := parser.Run("| Fecha | Canal |\n|---|---|\n")
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}

func TestTableParserIgnoresLeadingProse(t *testing.T) {
	parser := NewTableParser()

	markdown := `Aquí tienes el calendario:

| Fecha de publicación | Red | Copy |
|:---|:---:|---:|
| 2024-02-01 | LinkedIn | Texto largo |

Espero que te sirva.`

	rows := parser.Run(markdown)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	expected := SocialRow{FieldDate: "2024-02-01", "red": "LinkedIn", FieldCopy: "Texto largo"}
	if diff := cmp.Diff(expected, rows[0]); diff != "" {
		t.Errorf("Unexpected row (-want +got):\n%s", diff)
	}
}

func TestTableParserShortRows(t *testing.T) {
	parser := NewTableParser()

	markdown := `| Fecha | Canal | CTA |
|---|---|---|
| 2024-03-01 |
| 2024-03-02 | X | Compra | extra |`

	rows := parser.Run(markdown)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if diff := cmp.Diff(SocialRow{FieldDate: "2024-03-01"}, rows[0]); diff != "" {
		t.Errorf("Unexpected short row (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(SocialRow{FieldDate: "2024-03-02", FieldChannel: "X", FieldCTA: "Compra"}, rows[1]); diff != "" {
		t.Errorf("Unexpected long row (-want +got):\n%s", diff)
	}
}

func TestTableParserSeparatorInsideCell(t *testing.T) {
	parser := NewTableParser()

	markdown := `| Fecha | Copy |
|---|---|
| 2024-04-01 | antes --- después |
| 2024-04-02 | normal |`

	rows := parser.Run(markdown)
	if len(rows) != 1 {
		t.Fatalf("Expected the row containing --- to be skipped, got %d rows", len(rows))
	}
	if rows[0][FieldDate] != "2024-04-02" {
		t.Errorf("Expected remaining row dated 2024-04-02, got %s", rows[0][FieldDate])
	}
}

func TestTableParserFieldFor(t *testing.T) {
	parser := NewTableParser()

	tests := []struct {
		header   string
		expected string
	}{
		{"Fecha de publicación", FieldDate},
		{"DATE", FieldDate},
		{"Canal", FieldChannel},
		{"Formato", FieldFormat},
		{"Pilar de contenido", FieldPillar},
		{"Título", FieldTitle},
		{"Tema / Título", FieldTopicTitle},
		{"Title", FieldTitle},
		{"Texto del post", FieldCopy},
		{"Hashtags", FieldHashtags},
		{"CTA", FieldCTA},
		{"Recurso necesario", FieldAssetRequired},
		{"Duración", FieldDuration},
		{"Instrucciones", FieldInstructions},
		{"Enlace con UTM", FieldLinkUTM},
		{"KPI", FieldKPI},
		{"Responsable", FieldOwner},
		{"Estado", FieldStatus},
		{"Notas", FieldNotes},
		{"Día", FieldDay},
		{"Hook", FieldHook},
		{"Objetivo", FieldObjective},
		{"  Audiencia  ", "audiencia"},
		// "fecha" wins over "formato" because date rules come first
		{"Formato fecha", FieldDate},
	}

	for _, test := range tests {
		if got := parser.FieldFor(test.header); got != test.expected {
			t.Errorf("FieldFor(%q): expected %s, got %s", test.header, test.expected, got)
		}
	}
}

func TestSocialRowRecord(t *testing.T) {
	row := SocialRow{
		FieldDate:       "2024-01-01",
		FieldChannel:    "IG",
		FieldFormat:     "Reel",
		FieldTopicTitle: "Lanzamiento",
		FieldCopy:       "Nuevo producto",
		FieldCTA:        "Compra",
		FieldHashtags:   "#nuevo",
	}

	expected := Record{
		Date:     "2024-01-01",
		Channel:  "IG",
		Type:     RecordTypeSocial,
		Format:   "Reel",
		Title:    "Lanzamiento",
		Copy:     "Nuevo producto",
		CTA:      "Compra",
		Hashtags: "#nuevo",
	}
	if diff := cmp.Diff(expected, row.Record()); diff != "" {
		t.Errorf("Unexpected record (-want +got):\n%s", diff)
	}

	row[FieldPillar] = "Educación"
	row[FieldTitle] = "Título directo"
	record := row.Record()
	if record.Type != "Educación" {
		t.Errorf("Expected pillar as type, got %s", record.Type)
	}
	if record.Title != "Título directo" {
		t.Errorf("Expected title to take precedence over topic title, got %s", record.Title)
	}
}
