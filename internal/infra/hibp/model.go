package hibp

import "github.com/ahrav/breachcheck/internal/domain/breach"

// apiBreach is the wire shape of a breach in the v3 API.
type apiBreach struct {
	Name         string   `json:"Name"`
	Title        string   `json:"Title"`
	Domain       string   `json:"Domain"`
	BreachDate   string   `json:"BreachDate"`
	AddedDate    string   `json:"AddedDate"`
	ModifiedDate string   `json:"ModifiedDate"`
	PwnCount     int64    `json:"PwnCount"`
	Description  string   `json:"Description"`
	LogoPath     string   `json:"LogoPath"`
	DataClasses  []string `json:"DataClasses"`
	IsVerified   bool     `json:"IsVerified"`
	IsFabricated bool     `json:"IsFabricated"`
	IsSensitive  bool     `json:"IsSensitive"`
	IsRetired    bool     `json:"IsRetired"`
	IsSpamList   bool     `json:"IsSpamList"`
	IsMalware    bool     `json:"IsMalware"`
}

func (b apiBreach) toDomain() breach.Breach {
	dataClasses := b.DataClasses
	if dataClasses == nil {
		dataClasses = []string{}
	}
	return breach.Breach{
		Name:         b.Name,
		Title:        b.Title,
		Domain:       b.Domain,
		BreachDate:   b.BreachDate,
		AddedDate:    b.AddedDate,
		ModifiedDate: b.ModifiedDate,
		PwnCount:     b.PwnCount,
		Description:  b.Description,
		LogoPath:     b.LogoPath,
		DataClasses:  dataClasses,
		IsVerified:   b.IsVerified,
		IsFabricated: b.IsFabricated,
		IsSensitive:  b.IsSensitive,
		IsRetired:    b.IsRetired,
		IsSpamList:   b.IsSpamList,
		IsMalware:    b.IsMalware,
	}
}
