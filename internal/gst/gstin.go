package gst

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation is the outcome of checking a candidate GSTIN.
type Validation struct {
	Valid     bool   `json:"valid"`
	GSTIN     string `json:"gstin"`
	StateCode string `json:"state_code,omitempty"`
	StateName string `json:"state_name,omitempty"`
	PAN       string `json:"pan,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ErrInvalidGSTIN indicates a structurally invalid GSTIN.
var ErrInvalidGSTIN = errors.New("gst: invalid gstin")

const gstinLength = 15

// Layout: 2-digit state code, 10-char PAN, entity code, the letter Z, check digit.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// stateNames maps the two-digit GST state codes assigned by the GST council.
var stateNames = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"11": "Sikkim",
	"12": "Arunachal Pradesh",
	"13": "Nagaland",
	"14": "Manipur",
	"15": "Mizoram",
	"16": "Tripura",
	"17": "Meghalaya",
	"18": "Assam",
	"19": "West Bengal",
	"20": "Jharkhand",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"26": "Dadra and Nagar Haveli and Daman and Diu",
	"27": "Maharashtra",
	"28": "Andhra Pradesh (old)",
	"29": "Karnataka",
	"30": "Goa",
	"31": "Lakshadweep",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"34": "Puducherry",
	"35": "Andaman and Nicobar Islands",
	"36": "Telangana",
	"37": "Andhra Pradesh",
	"38": "Ladakh",
}

const checksumAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ValidateGSTIN checks a candidate string against the GSTIN format: length,
// character classes, a known state-code prefix, and the mod-36 check digit.
// The returned Validation carries the extracted state code and PAN on success
// and a human-readable reason on failure.
func ValidateGSTIN(candidate string) Validation {
	gstin := strings.ToUpper(strings.TrimSpace(candidate))
	result := Validation{GSTIN: gstin}

	if gstin == "" {
		result.Error = "gstin is required"
		return result
	}
	if len(gstin) != gstinLength {
		result.Error = fmt.Sprintf("gstin must be %d characters, got %d", gstinLength, len(gstin))
		return result
	}
	if !gstinPattern.MatchString(gstin) {
		result.Error = "gstin does not match the required format"
		return result
	}

	stateCode := gstin[:2]
	stateName, ok := stateNames[stateCode]
	if !ok {
		result.Error = fmt.Sprintf("unknown state code %q", stateCode)
		return result
	}

	if expected := checkDigit(gstin[:gstinLength-1]); expected != gstin[gstinLength-1] {
		result.Error = "check digit mismatch"
		return result
	}

	result.Valid = true
	result.StateCode = stateCode
	result.StateName = stateName
	result.PAN = gstin[2:12]
	return result
}

// StateCode extracts the two-digit state code after full validation.
func StateCode(gstin string) (string, error) {
	v := ValidateGSTIN(gstin)
	if !v.Valid {
		return "", fmt.Errorf("%w: %s", ErrInvalidGSTIN, v.Error)
	}
	return v.StateCode, nil
}

// checkDigit computes the GSTIN check character over the first 14 characters.
// Each character maps to its base-36 value, every second position is doubled,
// and digit sums are accumulated mod 36.
func checkDigit(prefix string) byte {
	sum := 0
	for i := 0; i < len(prefix); i++ {
		value := strings.IndexByte(checksumAlphabet, prefix[i])
		factor := 1
		if i%2 == 1 {
			factor = 2
		}
		product := value * factor
		sum += product/36 + product%36
	}
	return checksumAlphabet[(36-sum%36)%36]
}
