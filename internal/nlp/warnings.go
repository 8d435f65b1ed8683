package nlp

import "trading-journal/internal/models"

// WarningThreshold is the confidence at which an emotion produces a warning.
const WarningThreshold = 0.3

var warningTexts = map[models.Language]map[models.EmotionType]string{
	models.LangVietnamese: {
		models.EmotionFOMO:           "CẢNH BÁO FOMO: Kiểm tra lại lý do vào lệnh. Đợi pullback?",
		models.EmotionRevenge:        "CẢNH BÁO REVENGE: Nghỉ ít nhất 30 phút trước khi giao dịch tiếp.",
		models.EmotionGreed:          "CẢNH BÁO GREED: Cân nhắc giảm khối lượng 50%.",
		models.EmotionFear:           "Phát hiện FEAR: Bám theo kế hoạch, tránh bán tháo.",
		models.EmotionOverconfidence: "CẢNH BÁO: Quá tự tin dễ dẫn đến sai lầm. Kiểm tra lại phân tích.",
		models.EmotionManipulation:   "CẢNH BÁO MANIPULATION: Có dấu hiệu thao túng. Kiểm tra nguồn thông tin.",
	},
	models.LangEnglish: {
		models.EmotionFOMO:           "FOMO WARNING: Re-check why you are entering. Wait for a pullback?",
		models.EmotionRevenge:        "REVENGE WARNING: Take at least 30 minutes off before the next trade.",
		models.EmotionGreed:          "GREED WARNING: Consider cutting position size by 50%.",
		models.EmotionFear:           "FEAR detected: Stick to your plan and avoid panic selling.",
		models.EmotionOverconfidence: "WARNING: Overconfidence leads to mistakes. Double-check the analysis.",
		models.EmotionManipulation:   "MANIPULATION WARNING: Signs of market manipulation. Verify your sources.",
	},
}

// Warnings returns one localized warning per dangerous emotion whose
// confidence reaches WarningThreshold, in emotion order.
func Warnings(lang models.Language, emotions []models.Emotion) []string {
	texts, ok := warningTexts[lang]
	if !ok {
		texts = warningTexts[models.LangEnglish]
	}
	warnings := []string{}
	for _, e := range emotions {
		if e.Confidence < WarningThreshold {
			continue
		}
		if msg, ok := texts[e.Type]; ok {
			warnings = append(warnings, msg)
		}
	}
	return warnings
}
