package provider

import (
	"regexp"
	"strings"
)

// documentPatterns maps country -> document type -> accepted format
var documentPatterns = map[string]map[string]*regexp.Regexp{
	"CO": {
		"CC":  regexp.MustCompile(`^[1-9][0-9]{3,9}$`),
		"CE":  regexp.MustCompile(`^([a-zA-Z]{1,5})?[1-9][0-9]{3,7}$`),
		"TI":  regexp.MustCompile(`^[1-9][0-9]{4,11}$`),
		"NIT": regexp.MustCompile(`^[1-9]\d{6,9}$`),
		"RUT": regexp.MustCompile(`^[1-9]\d{6,9}$`),
	},
	"EC": {
		"CI":  regexp.MustCompile(`^\d{10}$`),
		"RUC": regexp.MustCompile(`^\d{13}$`),
	},
	"PR": {
		"EIN": regexp.MustCompile(`^[1-9]\d?-\d{7}$`),
	},
	"CR": {
		"CRCPF": regexp.MustCompile(`^[1-9][0-9]{8}$`),
		"CPJ":   regexp.MustCompile(`^[1-9][0-9]{9}$`),
		"DIMEX": regexp.MustCompile(`^[1-9][0-9]{10,11}$`),
		"DIDI":  regexp.MustCompile(`^[1-9][0-9]{10,11}$`),
	},
	"CL": {
		"CLRUT": regexp.MustCompile(`^(\d{1,2}(?:\.?\d{1,3}){2}-[\dKk])$`),
	},
	"PA": {
		"CIP":   regexp.MustCompile(`^(N|E|PE\d+)?\d{2,6}\d{2,6}$`),
		"PARUC": regexp.MustCompile(`^[a-zA-Z0-9\-]{1,16}$`),
	},
	"BR": {
		"CPF": regexp.MustCompile(`^\d{10,11}$`),
	},
	"PE": {
		"DNI":   regexp.MustCompile(`^\d{8}$`),
		"PERUC": regexp.MustCompile(`^(10|15|16|17|20)\d{9}$`),
	},
	"HN": {
		"HNDNI": regexp.MustCompile(`^[a-zA-Z0-9]{1,15}$`),
		"HNDR":  regexp.MustCompile(`^[a-zA-Z0-9]{1,15}$`),
		"RTN":   regexp.MustCompile(`^[0-9]{14,16}$`),
	},
	"BZ": {
		"BZSSN": regexp.MustCompile(`^[0-9]{9}$`),
		"BRN":   regexp.MustCompile(`^[0-9]{5,7}$`),
	},
	"UY": {
		"UYCI":  regexp.MustCompile(`^\d{6,7}-[0-9]$`),
		"UYRUT": regexp.MustCompile(`^\d{12}$`),
	},
}

// ValidateDocument checks a document number against the format of its type in
// the given country. Missing values and unsupported countries are skipped.
func ValidateDocument(country, documentType, document string) error {
	if country == "" || documentType == "" || document == "" {
		return nil
	}

	country = strings.ToUpper(country)
	types, ok := documentPatterns[country]
	if !ok {
		return nil
	}

	pattern, ok := types[documentType]
	if !ok {
		return NewValidationError("documentType %s is not supported for country %s", documentType, country)
	}
	if !pattern.MatchString(document) {
		return NewValidationError("document %s does not match the %s format (%s)", document, documentType, country)
	}
	return nil
}

// ValidatePersonDocument validates a buyer or payer document using its address country
func ValidatePersonDocument(person *Person, context string) error {
	if person == nil || person.Address == nil {
		return nil
	}
	if err := ValidateDocument(person.Address.Country, person.DocumentType, person.Document); err != nil {
		if ve, ok := err.(*ValidationError); ok && context != "" {
			ve.Message = context + ": " + ve.Message
		}
		return err
	}
	return nil
}
