package domain

// Verdict is the raw answer of the remote classifier
type Verdict struct {
	Exposes  bool   `json:"expone"`
	Category string `json:"tipo"`
}

// Classification is the fused result
type Classification struct {
	Exposes  bool     `json:"expone"`
	Category Category `json:"tipo"`
}

// Detected reports whether the classification should lead to a notification
func (c Classification) Detected() bool {
	return c.Exposes && !c.Category.IsNone()
}
