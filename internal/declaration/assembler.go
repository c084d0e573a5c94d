package declaration

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Document: bir extractor'a verilen belge. PDF her zaman dolu gelir;
// Text ve Fragments önceden çıkarılmışsa extractor onları kullanır,
// yoksa PDF'ten kendisi üretir.
type Document struct {
	Filename  string
	PDF       []byte
	Text      string
	Fragments []Fragment
}

// Extractor: üç stratejinin ortak sözleşmesi. Ham alan değerlerini
// döndürür, türetilmiş toplamları hesaplamaz.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (*RawFields, error)
}

// Result: tek belgenin çıktısı. Raw alanlar admin test-parse akışında
// teşhis için döndürülür.
type Result struct {
	Record *Record
	Raw    *RawFields
}

// Assembler: konfigürasyonda seçilmiş tek stratejiyi çağırır, ham
// alanlardan kaydı kurar, doğrular. Strateji çalışma anında değişmez.
type Assembler struct {
	extractor Extractor
	timeout   time.Duration
	workers   int
}

func NewAssembler(extractor Extractor, timeout time.Duration, workers int) *Assembler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if workers < 1 {
		workers = 1
	}
	return &Assembler{extractor: extractor, timeout: timeout, workers: workers}
}

// NewExtractor: konfigürasyondaki strateji adından extractor kurar.
func NewExtractor(strategy, geminiModel string) (Extractor, error) {
	switch strategy {
	case "text":
		return NewTextExtractor(), nil
	case "layout":
		return NewLayoutExtractor(), nil
	case "gemini":
		return NewGeminiExtractor(geminiModel), nil
	}
	return nil, fmt.Errorf("bilinmeyen parse stratejisi: %q", strategy)
}

// ParseDocument: tek belgeyi işler. TC/VKN veya dönem bulunamazsa sert
// hata, doğrulamadan geçmeyen kayıt asla döndürülmez.
func (a *Assembler) ParseDocument(ctx context.Context, doc Document) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rf, err := a.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	rec, err := assemble(rf)
	if err != nil {
		return nil, err
	}

	return &Result{Record: rec, Raw: rf}, nil
}

// assemble: ham alanlardan kaydı kurar. Ciro ve gider burada
// hesaplanır, hiçbir strateji kendi toplamını dayatamaz.
func assemble(rf *RawFields) (*Record, error) {
	if rf.TCVKN == "" {
		return nil, &MissingFieldError{Field: "TC/VKN"}
	}
	period := rf.Period()
	if period == "" {
		return nil, &MissingFieldError{Field: "dönem"}
	}

	ciro := rf.MatrahToplami + rf.OzelMatrahBedeli

	var alisToplam float64
	for _, bedel := range rf.AlisBedelleri {
		alisToplam += bedel
	}
	gider := alisToplam + rf.IstisnaAlis

	rec := &Record{
		TCVKN:       rf.TCVKN,
		Period:      period,
		PeriodLabel: FormatPeriodLabel(period),
		Ciro:        ciro,
		Gider:       gider,
		NetKalan:    ciro - gider,
		DevredenKDV: rf.DevredenKDV,
		POSTahsilat: rf.POSTahsilat,
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// BatchSuccess / BatchError: toplu yüklemede belge bazında sonuç.
// Index, sonucun hangi dosyadan geldiğini kaybetmemek için taşınır.
type BatchSuccess struct {
	Index    int
	Filename string
	Record   *Record
}

type BatchError struct {
	Index    int
	Filename string
	Reason   string
}

type BatchResult struct {
	Success []BatchSuccess
	Errors  []BatchError
}

// ParseBatch: belgeleri bağımsız işler; bir belgenin hatası partiyi
// düşürmez, hata listesine yazılır ve devam edilir. workers > 1 ise
// sınırlı bir havuzla paralel çalışır, sonuç sırası belge sırasını
// korur.
func (a *Assembler) ParseBatch(ctx context.Context, docs []Document) *BatchResult {
	type slot struct {
		rec *Record
		err error
	}
	slots := make([]slot, len(docs))

	if a.workers <= 1 {
		for i, doc := range docs {
			res, err := a.ParseDocument(ctx, doc)
			if err != nil {
				slots[i] = slot{err: err}
				continue
			}
			slots[i] = slot{rec: res.Record}
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, a.workers)
		for i := range docs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				res, err := a.ParseDocument(ctx, docs[i])
				if err != nil {
					slots[i] = slot{err: err}
					return
				}
				slots[i] = slot{rec: res.Record}
			}(i)
		}
		wg.Wait()
	}

	result := &BatchResult{}
	for i, s := range slots {
		if s.err != nil {
			result.Errors = append(result.Errors, BatchError{
				Index:    i,
				Filename: docs[i].Filename,
				Reason:   s.err.Error(),
			})
			continue
		}
		result.Success = append(result.Success, BatchSuccess{
			Index:    i,
			Filename: docs[i].Filename,
			Record:   s.rec,
		})
	}
	return result
}
