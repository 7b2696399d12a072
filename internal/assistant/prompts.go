package assistant

import (
	"fmt"

	"pazaryeri/internal/pricing"
)

const systemPrompt = "Sen profesyonel bir ilan yazma uzmanısın. Türkiye pazarına özel, çekici ve satış odaklı içerikler üretiyorsun."

func titlePrompt(category, title string) string {
	return fmt.Sprintf(`"%[1]s" kategorisinde "%[2]s" ürünü için profesyonel, çekici ve detaylı bir başlık oluştur. 

Kurallar:
- Kullanıcının yazdığı "%[2]s" kelimesini mutlaka kullan ve ona uygun başlık üret
- Kategori: "%[1]s" - Bu kategoriye uygun başlık olmalı
- Başlık maksimum 80 karakter olsun
- Ürün özelliklerini ekle (marka, model, özellikler)
- Türkiye pazarına uygun olsun
- Sadece başlığı yaz, başka açıklama ekleme

Örnek: Kullanıcı "laptop" yazdıysa → "Dell Inspiron 15 Laptop - i7 İşlemci, 16GB RAM, 512GB SSD"`, category, title)
}

func descriptionPrompt(category, title string) string {
	return fmt.Sprintf(`"%s" kategorisinde "%s" başlıklı bir ürün için profesyonel bir açıklama yaz. Açıklama:
- Emoji kullan
- Ürün özelliklerini listele
- Satış odaklı olsun
- Maksimum 500 karakter
- WhatsApp iletişim bilgisi ekle`, category, title)
}

func improvePrompt(description string) string {
	return fmt.Sprintf(`Şu ilan açıklamasını iyileştir ve daha profesyonel hale getir:

"%s"

İyileştirme kuralları:
- Emoji ekle
- Daha çekici yap
- Satış odaklı detaylar ekle
- Maksimum 500 karakter
- WhatsApp iletişim vurgusu yap`, description)
}

func pricePrompt(req pricing.Request) string {
	condition := req.Condition
	if condition == "" {
		condition = "used"
	}
	return fmt.Sprintf(`"%s" kategorisinde "%s" başlıklı ürün için Türkiye piyasasında makul bir fiyat aralığı öner. 

Kurallar:
- Sadece sayısal fiyat aralığı yaz (örn: "950000-1050000")
- Para birimi veya açıklama ekleme
- Gerçekçi piyasa fiyatları ver
- Ürün durumu: %s`, req.Category, req.Title, condition)
}
