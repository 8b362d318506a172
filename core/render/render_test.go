package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leofalp/shipshape/core/label"
)

func sampleLabel() label.LabelData {
	return label.LabelData{
		Sender: label.Address{FullName: "Acme Corp", Street: "1 Factory Rd", City: "Austin", State: "TX", Country: "USA"},
		Receiver: label.Address{
			FullName: "John Smith", Street: "123 Main St", City: "Springfield",
			State: "IL", Country: "USA", PhoneNumber: "555-1234",
		},
		Package: label.PackageDetails{
			Weight: 1.5, WeightUnit: label.Pounds, Dimensions: "12x8x4",
			ServiceType: label.ServicePriority, TrackingNumber: "SHP004815162342", ShipDate: "2024-03-10",
		},
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, sampleLabel()); err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"size: 4in 6in",
		"PRIORITY OVERNIGHT",
		`<span class="service-code">P</span>`,
		"Springfield, IL",
		"SHP004815162342",
		"1.5 lbs",
		"2024-03-10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestHTML_EscapesUserText(t *testing.T) {
	data := sampleLabel()
	data.Sender.FullName = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := HTML(&buf, data); err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Error("user text must be escaped")
	}
	if !strings.Contains(buf.String(), "&lt;script&gt;") {
		t.Error("expected escaped name in output")
	}
}

func TestFragment_EmptyLabel(t *testing.T) {
	var buf bytes.Buffer
	if err := Fragment(&buf, label.LabelData{}); err != nil {
		t.Fatalf("Fragment() error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<!DOCTYPE") {
		t.Error("fragment must not include page chrome")
	}
	if !strings.Contains(out, "PENDING") {
		t.Error("missing tracking number should render as PENDING")
	}
	if !strings.Contains(out, `<span class="service-code">G</span>`) {
		t.Error("unknown service should fall back to G")
	}
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(sampleLabel())
	if err != nil {
		t.Fatalf("Markdown() error: %v", err)
	}

	for _, want := range []string{"PRIORITY OVERNIGHT", "SHIP TO", "John Smith", "Springfield, IL", "SHP004815162342", "1.5 lbs"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in markdown:\n%s", want, md)
		}
	}
	if strings.Contains(md, "<section") || strings.Contains(md, "<div") {
		t.Errorf("markdown should not contain html:\n%s", md)
	}
}

func TestServiceCode(t *testing.T) {
	tests := map[label.ServiceType]string{
		label.ServiceStandard: "G",
		label.ServiceExpress:  "E",
		label.ServicePriority: "P",
	}
	for service, want := range tests {
		if got := serviceCode(service); got != want {
			t.Errorf("serviceCode(%q) = %q, want %q", service, got, want)
		}
	}
}
