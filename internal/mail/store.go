package mail

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpTTL            = 2 * time.Minute
	maxVerifyAttempts = 3
)

var (
	ErrCodeNotFound    = errors.New("doğrulama kodu bulunamadı")
	ErrCodeExpired     = errors.New("kodun süresi doldu")
	ErrTooManyAttempts = errors.New("çok fazla hatalı deneme")
)

// WrongCodeError: kod eşleşmedi, kalan deneme hakkı yanıtta gösterilir.
type WrongCodeError struct {
	Remaining int
}

func (e *WrongCodeError) Error() string {
	return fmt.Sprintf("hatalı kod, %d deneme hakkı kaldı", e.Remaining)
}

type otpEntry struct {
	hashedCode []byte
	expireAt   time.Time
	attempts   int
}

// OTPStore: e-posta başına tek aktif doğrulama kodu tutar. Kodlar
// bcrypt ile saklanır, düz halde bellekte durmaz. Saat testlerde
// ilerletilebilsin diye enjekte edilir.
type OTPStore struct {
	// go-cache sadece map'i korur, entry'nin kendisini değil;
	// attempts sayacı mu altında güncellenir
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{
		// go-cache'in kendi TTL'i temizlik için; süre kontrolü expireAt
		// üzerinden yapılır ki 410 ile 404 ayırt edilebilsin
		cache: cache.New(10*time.Minute, 15*time.Minute),
		now:   time.Now,
	}
}

// NewOTPStoreWithClock: testler için sahte saatli kurucu
func NewOTPStoreWithClock(now func() time.Time) *OTPStore {
	s := NewOTPStore()
	s.now = now
	return s
}

// GenerateCode: 6 haneli kod üretir, hash'ini saklar ve düz kodu döner
// (sadece e-postaya yazılmak üzere).
func (s *OTPStore) GenerateCode(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("kod üretilemedi: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("kod hash'lenemedi: %w", err)
	}

	s.mu.Lock()
	s.cache.Set(email, &otpEntry{
		hashedCode: hashed,
		expireAt:   s.now().Add(otpTTL),
	}, cache.DefaultExpiration)
	s.mu.Unlock()

	return code, nil
}

// Verify: kodu kontrol eder. Başarıda ve süresi dolmuş/hakkı bitmiş
// girişlerde kayıt silinir, yeni kod istenmesi gerekir.
func (s *OTPStore) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(email)
	if !ok {
		return ErrCodeNotFound
	}
	entry := v.(*otpEntry)

	if s.now().After(entry.expireAt) {
		s.cache.Delete(email)
		return ErrCodeExpired
	}
	if entry.attempts >= maxVerifyAttempts {
		s.cache.Delete(email)
		return ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword(entry.hashedCode, []byte(code)) == nil {
		s.cache.Delete(email)
		return nil
	}

	entry.attempts++
	s.cache.Set(email, entry, cache.DefaultExpiration)
	return &WrongCodeError{Remaining: maxVerifyAttempts - entry.attempts}
}
