package declaration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtractor: testlerde sabit ham alan döndüren strateji
type stubExtractor struct {
	fields map[string]*RawFields
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, doc Document) (*RawFields, error) {
	if s.err != nil {
		return nil, s.err
	}
	if rf, ok := s.fields[doc.Filename]; ok {
		return rf, nil
	}
	return &RawFields{AlisBedelleri: map[int]float64{}}, nil
}

func validFields() *RawFields {
	return &RawFields{
		TCVKN:         "12345678901",
		Year:          "2025",
		Month:         "11",
		MatrahToplami: 213894.65,
		AlisBedelleri: map[int]float64{10: 26572.80, 20: 233220.55},
		DevredenKDV:   18500.25,
		POSTahsilat:   45000.00,
	}
}

func TestAssembleDerivedTotals(t *testing.T) {
	rec, err := assemble(validFields())
	require.NoError(t, err)

	assert.Equal(t, "12345678901", rec.TCVKN)
	assert.Equal(t, "2025-11", rec.Period)
	assert.Equal(t, "Kasım 2025", rec.PeriodLabel)
	assert.InDelta(t, 213894.65, rec.Ciro, 0.001)
	assert.InDelta(t, 259793.35, rec.Gider, 0.001)
	assert.InDelta(t, 213894.65-259793.35, rec.NetKalan, 0.001)
	assert.Equal(t, 18500.25, rec.DevredenKDV)
	assert.Equal(t, 45000.00, rec.POSTahsilat)
}

func TestAssembleRevenueAddsSpecialBase(t *testing.T) {
	rf := validFields()
	rf.OzelMatrahBedeli = 165279.00
	rec, err := assemble(rf)
	require.NoError(t, err)
	assert.InDelta(t, 379173.65, rec.Ciro, 0.001)
}

func TestAssembleExpenseAddsExemptPurchases(t *testing.T) {
	rf := validFields()
	rf.IstisnaAlis = 50000.00
	rec, err := assemble(rf)
	require.NoError(t, err)
	assert.InDelta(t, 309793.35, rec.Gider, 0.001)
}

func TestAssembleMissingTCVKN(t *testing.T) {
	rf := validFields()
	rf.TCVKN = ""
	_, err := assemble(rf)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "TC/VKN", missing.Field)
}

func TestAssembleMissingPeriod(t *testing.T) {
	rf := validFields()
	rf.Month = ""
	_, err := assemble(rf)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "dönem", missing.Field)
}

func TestValidateSingleViolation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawFields)
		want   string
	}{
		{"9 haneli kimlik", func(rf *RawFields) { rf.TCVKN = "123456789" }, "TC/VKN"},
		{"negatif devreden", func(rf *RawFields) { rf.DevredenKDV = -5 }, "devreden"},
		{"negatif pos", func(rf *RawFields) { rf.POSTahsilat = -1 }, "POS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf := validFields()
			tt.mutate(rf)
			_, err := assemble(rf)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Violations, 1)
			assert.Contains(t, verr.Violations[0], tt.want)
		})
	}
}

func TestValidateInvalidPeriodToken(t *testing.T) {
	rf := validFields()
	rf.Month = "13"
	_, err := assemble(rf)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Contains(t, verr.Violations[0], "dönem")
}

func TestValidateReportsAllViolations(t *testing.T) {
	rf := validFields()
	rf.TCVKN = "123456789"
	rf.DevredenKDV = -5
	_, err := assemble(rf)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
}

func TestParseDocumentReturnsRawFields(t *testing.T) {
	ex := &stubExtractor{fields: map[string]*RawFields{"a.pdf": validFields()}}
	asm := NewAssembler(ex, time.Second, 1)

	res, err := asm.ParseDocument(context.Background(), Document{Filename: "a.pdf"})
	require.NoError(t, err)
	assert.NotNil(t, res.Record)
	assert.NotNil(t, res.Raw)
	assert.Equal(t, "12345678901", res.Raw.TCVKN)
}

func TestParseBatchPartialFailure(t *testing.T) {
	noPeriod := validFields()
	noPeriod.Year = ""
	noPeriod.Month = ""

	ex := &stubExtractor{fields: map[string]*RawFields{
		"a.pdf": validFields(),
		"b.pdf": noPeriod,
		"c.pdf": validFields(),
	}}
	asm := NewAssembler(ex, time.Second, 1)

	docs := []Document{
		{Filename: "a.pdf"},
		{Filename: "b.pdf"},
		{Filename: "c.pdf"},
	}
	result := asm.ParseBatch(context.Background(), docs)

	require.Len(t, result.Success, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "b.pdf", result.Errors[0].Filename)
	assert.Contains(t, result.Errors[0].Reason, "dönem")
}

func TestParseBatchWorkerPoolPreservesOrder(t *testing.T) {
	ex := &stubExtractor{fields: map[string]*RawFields{
		"a.pdf": validFields(),
		"b.pdf": validFields(),
		"c.pdf": validFields(),
		"d.pdf": validFields(),
	}}
	asm := NewAssembler(ex, time.Second, 4)

	docs := []Document{
		{Filename: "a.pdf"}, {Filename: "b.pdf"},
		{Filename: "c.pdf"}, {Filename: "d.pdf"},
	}
	result := asm.ParseBatch(context.Background(), docs)

	require.Len(t, result.Success, 4)
	require.Empty(t, result.Errors)
	for i, s := range result.Success {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, docs[i].Filename, s.Filename)
	}
}

func TestParseBatchExtractorError(t *testing.T) {
	ex := &stubExtractor{err: errors.New("sayfa okunamadı")}
	asm := NewAssembler(ex, time.Second, 1)

	result := asm.ParseBatch(context.Background(), []Document{{Filename: "x.pdf"}})
	require.Empty(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Reason, "sayfa okunamadı")
}

func TestNewExtractorStrategies(t *testing.T) {
	for _, s := range []string{"text", "layout", "gemini"} {
		ex, err := NewExtractor(s, "")
		require.NoError(t, err, s)
		assert.NotNil(t, ex)
	}

	_, err := NewExtractor("hibrit", "")
	assert.Error(t, err)
}
