package label

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultCountry is the country a blank address starts with.
	DefaultCountry = "USA"

	// DefaultWeight is the weight of a fresh package, in DefaultWeightUnit.
	DefaultWeight = 1.5

	// DefaultDimensions is the LxWxH string of a fresh package.
	DefaultDimensions = "12x8x4"

	// ShipDateLayout is the calendar date layout used by PackageDetails.ShipDate.
	ShipDateLayout = "2006-01-02"
)

/*
	##### ADDRESS #####
*/

// Address is the shipping contact of one party. The JSON keys are the ones the
// extraction schema requires, so the struct doubles as the structured output type.
type Address struct {
	FullName    string `json:"fullName"    jsonschema:"description=Full name of the person or company,required"`
	Street      string `json:"street"      jsonschema:"description=Street address including house number and unit,required"`
	City        string `json:"city"        jsonschema:"description=City or locality,required"`
	State       string `json:"state"       jsonschema:"description=State province or region,required"`
	Country     string `json:"country"     jsonschema:"description=Country name,required"`
	PhoneNumber string `json:"phoneNumber" jsonschema:"description=Contact phone number,required"`
}

// NewAddress returns the blank address a form starts with.
func NewAddress() Address {
	return Address{Country: DefaultCountry}
}

// IsZero reports whether every field is empty.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Lines returns the non-empty lines of the address as printed on a label.
func (a Address) Lines() []string {
	var lines []string
	for _, l := range []string{a.FullName, a.Street, cityLine(a), a.Country, a.PhoneNumber} {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func cityLine(a Address) string {
	switch {
	case a.City != "" && a.State != "":
		return a.City + ", " + a.State
	case a.City != "":
		return a.City
	default:
		return a.State
	}
}

/*
	##### PACKAGE #####
*/

// WeightUnit is the unit PackageDetails.Weight is expressed in.
type WeightUnit string

const (
	Pounds    WeightUnit = "lbs"
	Kilograms WeightUnit = "kg"
)

// DefaultWeightUnit is the unit of a fresh package.
const DefaultWeightUnit = Pounds

// ServiceType is the shipping speed tier. Values are the display strings
// printed on the label.
type ServiceType string

const (
	ServiceStandard ServiceType = "Ground"
	ServiceExpress  ServiceType = "Express"
	ServicePriority ServiceType = "Priority Overnight"
)

// ServiceTypes lists the service tiers in display order.
func ServiceTypes() []ServiceType {
	return []ServiceType{ServiceStandard, ServiceExpress, ServicePriority}
}

// ParseServiceType accepts either the display value ("Priority Overnight") or
// the short name ("standard", "express", "priority"), case-insensitively.
func ParseServiceType(s string) (ServiceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ground", "standard":
		return ServiceStandard, nil
	case "express":
		return ServiceExpress, nil
	case "priority overnight", "priority", "overnight":
		return ServicePriority, nil
	}
	return "", fmt.Errorf("unknown service type %q", s)
}

// PackageDetails is the package block of a label.
type PackageDetails struct {
	Weight         float64     `json:"weight"         validate:"gte=0"`
	WeightUnit     WeightUnit  `json:"weightUnit"     validate:"oneof=lbs kg"`
	Dimensions     string      `json:"dimensions"`
	ServiceType    ServiceType `json:"serviceType"    validate:"oneof=Ground Express 'Priority Overnight'"`
	TrackingNumber string      `json:"trackingNumber"`
	ShipDate       string      `json:"shipDate"       validate:"omitempty,datetime=2006-01-02"`
}

// NewPackageDetails returns the package block a form starts with. The ship
// date is the calendar date of now in UTC; the tracking number is left empty
// for the caller to fill.
func NewPackageDetails(now time.Time) PackageDetails {
	return PackageDetails{
		Weight:      DefaultWeight,
		WeightUnit:  DefaultWeightUnit,
		Dimensions:  DefaultDimensions,
		ServiceType: ServiceStandard,
		ShipDate:    now.UTC().Format(ShipDateLayout),
	}
}

// WeightLabel formats the weight the way it is printed, e.g. "1.5 lbs".
func (p PackageDetails) WeightLabel() string {
	return fmt.Sprintf("%g %s", p.Weight, p.WeightUnit)
}

/*
	##### LABEL #####
*/

// LabelData is the snapshot of a form passed to rendering.
type LabelData struct {
	Sender   Address        `json:"sender"`
	Receiver Address        `json:"receiver"`
	Package  PackageDetails `json:"package"`
}

// Target names the address section of a label an operation applies to.
type Target string

const (
	TargetSender   Target = "sender"
	TargetReceiver Target = "receiver"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(s))) {
	case TargetSender:
		return TargetSender, nil
	case TargetReceiver:
		return TargetReceiver, nil
	}
	return "", fmt.Errorf("unknown address target %q", s)
}

// Address returns the address the target points at.
func (l LabelData) Address(target Target) Address {
	if target == TargetReceiver {
		return l.Receiver
	}
	return l.Sender
}

// WithAddress returns a copy of l with the target address replaced wholesale.
func (l LabelData) WithAddress(target Target, a Address) LabelData {
	if target == TargetReceiver {
		l.Receiver = a
	} else {
		l.Sender = a
	}
	return l
}
