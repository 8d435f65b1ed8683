package nlp

import "trading-journal/internal/models"

// DefaultTables returns the built-in keyword tables.
func DefaultTables() []Table {
	return []Table{vietnameseTable(), englishTable()}
}

// DefaultVocabulary returns the built-in risk-management vocabulary.
func DefaultVocabulary() []VocabularyGroup {
	return []VocabularyGroup{
		{Name: "stop_loss", Terms: []string{"stop loss", "stop-loss", "sl", "cắt lỗ", "dừng lỗ"}},
		{Name: "take_profit", Terms: []string{"take profit", "take-profit", "tp", "chốt lời"}},
		{Name: "risk_reward", Terms: []string{"rr", "r:r", "risk reward", "risk/reward", "risk-reward"}},
		{Name: "position_sizing", Terms: []string{"position size", "position sizing", "quản lý vốn", "size nhỏ", "risk management", "quản lý rủi ro"}},
		{Name: "plan", Terms: []string{"plan", "kế hoạch", "strategy", "chiến lược"}},
	}
}

func vietnameseTable() Table {
	return Table{
		Language:  models.LangVietnamese,
		Negations: []string{"không", "không phải", "chưa", "đừng", "chẳng", "chả"},
		Categories: []Category{
			{
				Name: "fomo", Emotion: models.EmotionFOMO, Weight: -0.8,
				Terms: []string{
					"sợ lỡ", "phải vào ngay", "mua gấp", "không kịp",
					"đang bay", "pump rồi", "fomo", "all in", "chốt liền",
					"bắt đáy", "đuổi giá", "lỡ tàu", "sợ miss", "không thể bỏ lỡ",
					"phải mua", "vào ngay đi", "mau lên", "nhanh tay",
				},
			},
			{
				Name: "fear", Emotion: models.EmotionFear, Weight: -0.6,
				Terms: []string{
					"sợ", "lo lắng", "hoang mang", "panic", "cắt lỗ ngay",
					"bán tháo", "dump", "sập", "crash", "liquidate",
					"thua hết", "mất sạch", "cháy tài khoản", "margin call",
					"không dám", "run rồi",
				},
			},
			{
				Name: "greed", Emotion: models.EmotionGreed, Weight: -0.5,
				Terms: []string{
					"x10", "x100", "moon", "rich", "giàu", "lời to",
					"all in", "leverage cao", "margin max", "full port",
					"lambo", "triệu phú", "đổi đời", "chắc thắng",
					"không thể thua", "dễ ăn",
				},
			},
			{
				Name: "revenge", Emotion: models.EmotionRevenge, Weight: -0.9,
				Terms: []string{
					"gỡ gạc", "gỡ lại", "trả thù", "thua đủ rồi",
					"phải thắng", "không thể thua nữa", "lấy lại",
					"đòi lại", "bù lỗ", "phục hận", "quyết gỡ",
					"tăng size", "đánh lớn hơn",
				},
			},
			{
				Name: "overconfidence", Emotion: models.EmotionOverconfidence, Weight: -0.4,
				Terms: []string{
					"chắc chắn thắng", "không thể sai", "dễ như ăn kẹo",
					"thắng rồi", "đỉnh cao", "bất bại", "siêu trader",
					"không cần stop loss", "all in được", "100% win",
					"ez game", "quá dễ", "chắc kèo", "ăn chắc",
					"thắng chắc", "win rate 100",
				},
			},
			{
				Name: "manipulation", Emotion: models.EmotionManipulation, Weight: -0.95,
				Terms: []string{
					"pump dump", "pnd", "dump trước khi pump", "fake volume",
					"wash trading", "tạo khối lượng ảo", "đẩy giá", "đánh sập",
					"tin nội bộ", "insider", "sắp list", "delist", "rug pull",
					"scam", "lừa đảo", "trap", "bẫy",
				},
			},
			{
				Name: "rational", Emotion: models.EmotionRational, Weight: 0.7,
				Terms: []string{
					"phân tích", "theo kế hoạch", "rr", "stop loss",
					"take profit", "quản lý vốn", "size nhỏ", "test",
					"chờ xác nhận", "pullback", "retest", "risk management",
					"sl", "tp", "entry point", "theo chiến lược",
				},
			},
			{
				Name: "confident", Emotion: models.EmotionConfident, Weight: 0.5,
				Terms: []string{
					"tin tưởng", "setup đẹp", "high probability",
					"theo trend", "xác nhận rồi", "tín hiệu tốt",
					"backtest", "có edge", "tỷ lệ thắng cao",
				},
			},
			{
				Name: "discipline", Emotion: models.EmotionDiscipline, Weight: 0.6,
				Terms: []string{
					"theo plan", "kỷ luật", "đúng quy trình", "không tham",
					"cắt lỗ đúng điểm", "chờ signal", "patience", "kiên nhẫn",
					"không fomo", "theo rules",
				},
			},
		},
	}
}

func englishTable() Table {
	return Table{
		Language:  models.LangEnglish,
		Negations: []string{"no", "not", "don't", "doesn't", "never", "won't", "can't"},
		Categories: []Category{
			{
				Name: "fomo", Emotion: models.EmotionFOMO, Weight: -0.8,
				Terms: []string{
					"fomo", "fear of missing out", "must buy now", "hurry", "missing out",
					"can't miss this", "pump", "moon", "going up fast",
					"buy before too late", "get in now", "buy now",
				},
			},
			{
				Name: "fear", Emotion: models.EmotionFear, Weight: -0.6,
				Terms: []string{
					"scared", "worried", "panic", "dump", "crash",
					"losing everything", "liquidated", "margin call",
					"stop out", "afraid", "fear", "panic sell",
				},
			},
			{
				Name: "greed", Emotion: models.EmotionGreed, Weight: -0.5,
				Terms: []string{
					"x10", "x100", "moon", "lambo", "rich",
					"all in", "max leverage", "full port", "easy money",
					"guaranteed profit", "greed", "greedy",
				},
			},
			{
				Name: "revenge", Emotion: models.EmotionRevenge, Weight: -0.9,
				Terms: []string{
					"revenge trade", "get it back", "must win",
					"can't lose again", "recover losses", "bigger position",
					"double down", "average down",
				},
			},
			{
				Name: "rational", Emotion: models.EmotionRational, Weight: 0.7,
				Terms: []string{
					"analysis", "according to plan", "risk reward",
					"stop loss", "take profit", "position sizing",
					"risk management", "tested strategy", "high probability setup",
				},
			},
			{
				Name: "confident", Emotion: models.EmotionConfident, Weight: 0.5,
				Terms: []string{
					"confident", "good setup", "trend following",
					"confirmed signal", "backtested", "edge",
					"high win rate", "proven strategy", "statistical edge",
				},
			},
			{
				Name: "discipline", Emotion: models.EmotionDiscipline, Weight: 0.6,
				Terms: []string{
					"following plan", "disciplined", "stick to rules",
					"patient", "waiting for signal", "no fomo",
					"proper risk management", "cutting losses",
				},
			},
			{
				Name: "overconfidence", Emotion: models.EmotionOverconfidence, Weight: -0.4,
				Terms: []string{
					"can't lose", "guaranteed win", "easy money",
					"100% sure", "no way to fail", "already won",
					"no stop needed", "risk free",
				},
			},
			{
				Name: "manipulation", Emotion: models.EmotionManipulation, Weight: -0.95,
				Terms: []string{
					"pump and dump", "pnd", "wash trading", "fake volume",
					"insider info", "listing soon", "rug pull", "exit scam",
					"coordinated pump", "market maker manipulation", "spoofing",
				},
			},
		},
	}
}
