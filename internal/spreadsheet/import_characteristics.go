package spreadsheet

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"go.uber.org/zap"
)

// CharacteristicReport summarises what a characteristics import would change
type CharacteristicReport struct {
	SectionsCreated int `json:"sections_created"`
	FieldsCreated   int `json:"fields_created"`
	FieldsUpdated   int `json:"fields_updated"`
	RowsSkipped     int `json:"rows_skipped"`
}

// CharacteristicImportResult is the reconciled section list parsed from a workbook
type CharacteristicImportResult struct {
	Sections []domain.CharacteristicSection `json:"sections"`
	Errors   []ImportError                  `json:"errors"`
	Report   CharacteristicReport           `json:"report"`
}

// HasErrors reports whether the result must not be committed
func (r *CharacteristicImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ImportCharacteristics reconciles workbook rows against existing sections. Sections match by
// title and fields by the (RU, EN) label pair, both ignoring case. existing is never modified.
func (c *Codec) ImportCharacteristics(data []byte, existing []domain.CharacteristicSection) *CharacteristicImportResult {
	res := &CharacteristicImportResult{Sections: domain.CloneSections(existing), Errors: []ImportError{}}
	abort := func(errs []ImportError) *CharacteristicImportResult {
		return &CharacteristicImportResult{Sections: []domain.CharacteristicSection{}, Errors: errs}
	}

	f, errs := openWorkbook(data)
	if errs != nil {
		return abort(errs)
	}
	defer f.Close()

	t, errs := readTable(f, findSheet(f, SheetCharacteristics, "Characteristics"))
	if errs != nil {
		return abort(errs)
	}
	if missing := t.missing(colSectionTitle, colLabelRu, colLabelEn, colValueRu, colValueEn, colFieldType); len(missing) > 0 {
		return abort(structuralError(t.sheet, "missing required column %q", missing[0]))
	}

	skip := func(i int, format string, args ...interface{}) {
		res.Errors = append(res.Errors, ImportError{Sheet: t.sheet, Row: t.rowNumber(i), Message: fmt.Sprintf(format, args...)})
		res.Report.RowsSkipped++
	}

	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}

		title := t.get(row, colSectionTitle)
		if title == "" {
			skip(i, "section title is required")
			continue
		}

		// An unparseable section order falls back to the automatic order
		var sectionOrder *int
		if n, err := parseInt(t.get(row, colSectionOrder)); err == nil {
			sectionOrder = &n
		}

		labelRu, labelEn := t.get(row, colLabelRu), t.get(row, colLabelEn)

		var fieldType domain.FieldType
		if raw := t.get(row, colFieldType); raw != "" {
			ft, ok := fieldTypeAliases.lookup(raw)
			if !ok {
				skip(i, "unknown field type %q", raw)
				continue
			}
			fieldType = ft
		}

		var fieldOrder *int
		if raw := t.get(row, colFieldOrder); raw != "" {
			n, err := parseInt(raw)
			if err != nil {
				skip(i, "invalid field order %q", raw)
				continue
			}
			fieldOrder = &n
		}

		section := res.findOrCreateSection(title, sectionOrder)

		// A row with a section but no labels only declares the section
		if labelRu == "" && labelEn == "" {
			continue
		}

		// A blank type cell keeps the matched field's type; new fields default to text
		field := findField(section, labelRu, labelEn)
		if fieldType == "" {
			fieldType = domain.FieldTypeText
			if field != nil && field.FieldType != "" {
				fieldType = field.FieldType
			}
		}

		valueRu := coerceFieldValue(t.get(row, colValueRu), fieldType)
		valueEn := coerceFieldValue(t.get(row, colValueEn), fieldType)

		if field != nil {
			field.ValueRu = valueRu
			field.ValueEn = valueEn
			field.FieldType = fieldType
			if fieldOrder != nil {
				field.Order = *fieldOrder
			}
			res.Report.FieldsUpdated++
			continue
		}

		order := len(section.Fields)
		if fieldOrder != nil {
			order = *fieldOrder
		}
		section.Fields = append(section.Fields, domain.CharacteristicField{
			ID:        uuid.New(),
			LabelRu:   labelRu,
			LabelEn:   labelEn,
			ValueRu:   valueRu,
			ValueEn:   valueEn,
			FieldType: fieldType,
			Order:     order,
		})
		res.Report.FieldsCreated++
	}

	c.logger.Info("Characteristics workbook parsed",
		zap.Int("sections_created", res.Report.SectionsCreated),
		zap.Int("fields_created", res.Report.FieldsCreated),
		zap.Int("fields_updated", res.Report.FieldsUpdated),
		zap.Int("rows_skipped", res.Report.RowsSkipped),
	)
	return res
}

// findOrCreateSection matches by title ignoring case; new sections go after the current maximum order
func (r *CharacteristicImportResult) findOrCreateSection(title string, order *int) *domain.CharacteristicSection {
	key := normalize(title)
	for i := range r.Sections {
		if normalize(r.Sections[i].Title) == key {
			if order != nil {
				r.Sections[i].Order = *order
			}
			return &r.Sections[i]
		}
	}

	next := 0
	for i, s := range r.Sections {
		if i == 0 || s.Order >= next {
			next = s.Order + 1
		}
	}
	if order != nil {
		next = *order
	}

	r.Sections = append(r.Sections, domain.CharacteristicSection{
		ID:     uuid.New(),
		Title:  title,
		Order:  next,
		Fields: []domain.CharacteristicField{},
	})
	r.Report.SectionsCreated++
	return &r.Sections[len(r.Sections)-1]
}

func findField(section *domain.CharacteristicSection, labelRu, labelEn string) *domain.CharacteristicField {
	ru, en := normalize(labelRu), normalize(labelEn)
	for i := range section.Fields {
		if normalize(section.Fields[i].LabelRu) == ru && normalize(section.Fields[i].LabelEn) == en {
			return &section.Fields[i]
		}
	}
	return nil
}
