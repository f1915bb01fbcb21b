package model

import "time"

// CompanyRecord holds registry data resolved from a tax identifier.
type CompanyRecord struct {
	TaxID            string     `json:"tax_id"`
	CorporateName    string     `json:"corporate_name"`
	TradeName        string     `json:"trade_name,omitempty"`
	LegalNature      string     `json:"legal_nature,omitempty"`
	MainActivity     string     `json:"main_activity,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	Capital          *float64   `json:"capital,omitempty"`
	LegalStatus      string     `json:"legal_status,omitempty"`
	SpecialStatus    string     `json:"special_status,omitempty"`
	Address          *Address   `json:"address,omitempty"`
}

// Address is the registered company address.
type Address struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

// YearsOperating returns the number of years since registration, or -1 when
// the registration date is unknown.
func (c *CompanyRecord) YearsOperating(now time.Time) float64 {
	if c.RegistrationDate == nil {
		return -1
	}
	return now.Sub(*c.RegistrationDate).Hours() / 24 / 365
}
