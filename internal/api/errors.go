package api

import (
	"errors"
	"fmt"
	"net/http"

	"pazaryeri/internal/assistant"
	"pazaryeri/internal/auth"
	"pazaryeri/internal/config"
	"pazaryeri/internal/pricing"
	"pazaryeri/internal/repository"

	"github.com/rotisserie/eris"
)

var errBadRequest = eris.New("bad request")

// statusFor maps domain errors to an HTTP status and a user-facing message.
func statusFor(err error) (int, string) {
	var pinErr *auth.InvalidPINError
	if errors.As(err, &pinErr) {
		if pinErr.Remaining == 0 {
			return http.StatusUnauthorized, "Çok fazla başarısız deneme. Hesabınız kilitlendi."
		}
		return http.StatusUnauthorized, fmt.Sprintf("Hatalı PIN. Kalan deneme: %d", pinErr.Remaining)
	}

	switch {
	case eris.Is(err, errBadRequest):
		return http.StatusBadRequest, "Geçersiz istek"
	case eris.Is(err, config.ErrMissingCredential):
		return http.StatusInternalServerError, "API anahtarı yapılandırılmamış. Lütfen sunucu ayarlarını kontrol edin."

	case eris.Is(err, pricing.ErrInsufficientData):
		return http.StatusBadRequest, "Fiyat önerisi için yeterli veri bulunamadı. Lütfen daha detaylı başlık yazın."
	case eris.Is(err, pricing.ErrPricingUnavailable):
		return http.StatusBadGateway, "Fiyat tahmini şu anda yapılamıyor. Lütfen daha sonra tekrar deneyin."

	case eris.Is(err, assistant.ErrTitleRequired):
		return http.StatusBadRequest, `Lütfen önce ürününüzü kısaca yazın (örn: "laptop i7")`
	case eris.Is(err, assistant.ErrDescriptionRequired):
		return http.StatusBadRequest, "Lütfen önce bir açıklama yazın"
	case eris.Is(err, assistant.ErrUnknownAction):
		return http.StatusBadRequest, "Geçersiz action"
	case eris.Is(err, assistant.ErrInvalidAPIKey):
		return http.StatusInternalServerError, "API anahtarı geçersiz. Lütfen OPENAI_API_KEY'i kontrol edin."
	case eris.Is(err, assistant.ErrUpstreamLimit):
		return http.StatusTooManyRequests, "API limit aşıldı. Lütfen daha sonra tekrar deneyin."
	case eris.Is(err, assistant.ErrUpstream):
		return http.StatusInternalServerError, "Yapay zeka servisine ulaşılamadı"

	case eris.Is(err, auth.ErrInvalidPhone):
		return http.StatusBadRequest, "Geçersiz telefon numarası"
	case eris.Is(err, auth.ErrInvalidPINFormat):
		return http.StatusBadRequest, "PIN 4-6 haneli olmalıdır"
	case eris.Is(err, auth.ErrNameRequired):
		return http.StatusBadRequest, "Ad soyad gerekli"
	case eris.Is(err, auth.ErrPhoneTaken):
		return http.StatusConflict, "Bu telefon numarası zaten kayıtlı"
	case eris.Is(err, auth.ErrUserNotFound):
		return http.StatusUnauthorized, "Kullanıcı bulunamadı"
	case eris.Is(err, auth.ErrLocked):
		return http.StatusForbidden, "Hesabınız kilitlendi. Lütfen destek ile iletişime geçin."
	case eris.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized, "Geçersiz session"

	case eris.Is(err, repository.ErrRateLimited):
		return http.StatusTooManyRequests, "Günlük istek limitine ulaştınız. Lütfen yarın tekrar deneyin."
	case eris.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Kayıt bulunamadı"
	}
	return http.StatusInternalServerError, "Bir hata oluştu"
}
