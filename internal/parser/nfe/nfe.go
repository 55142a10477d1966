// Package nfe parses Brazilian NFe (Nota Fiscal Eletrônica) XML
// documents into normalized line items for the calculation engine.
package nfe

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/icmsst/internal/fiscal"
	"github.com/fiscalbr/icmsst/internal/model"
)

// NFe XML structures (portalfiscal.inf.br/nfe schema, namespace-agnostic)
type nfeProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     nfeRoot  `xml:"NFe"`
}

type nfeRoot struct {
	XMLName xml.Name `xml:"NFe"`
	InfNFe  infNFe   `xml:"infNFe"`
}

type infNFe struct {
	ID     string    `xml:"Id,attr"`
	Issuer nfeParty  `xml:"emit"`
	Dest   nfeParty  `xml:"dest"`
	Det    []nfeDet  `xml:"det"`
	Total  nfeTotal  `xml:"total"`
	Transp nfeTransp `xml:"transp"`
}

type nfeParty struct {
	CNPJ      string `xml:"CNPJ"`
	Name      string `xml:"xNome"`
	TradeName string `xml:"xFant"`
}

type nfeDet struct {
	ItemNo  string  `xml:"nItem,attr"`
	Product nfeProd `xml:"prod"`
	Tax     nfeTax  `xml:"imposto"`
}

type nfeProd struct {
	Code        string `xml:"cProd"`
	Description string `xml:"xProd"`
	NCM         string `xml:"NCM"`
	Quantity    string `xml:"qCom"`
	UnitPrice   string `xml:"vUnCom"`
	TotalValue  string `xml:"vProd"`
	Freight     string `xml:"vFrete"`
}

type nfeTax struct {
	IPI nfeIPI `xml:"IPI"`
}

type nfeIPI struct {
	Taxed    nfeIPIValue `xml:"IPITrib"`
	NonTaxed nfeIPIValue `xml:"IPINT"`
}

type nfeIPIValue struct {
	Value string `xml:"vIPI"`
}

type nfeTotal struct {
	ICMSTot nfeICMSTot `xml:"ICMSTot"`
}

type nfeICMSTot struct {
	ProductsValue string `xml:"vProd"`
	FreightValue  string `xml:"vFrete"`
	InvoiceValue  string `xml:"vNF"`
}

type nfeTransp struct {
	Mode    string   `xml:"modFrete"`
	Carrier nfeParty `xml:"transporta"`
}

// Party identifies the invoice issuer, recipient or carrier.
type Party struct {
	CNPJ      string
	Name      string
	TradeName string
}

// Totals carries the invoice-level totals from the ICMSTot block.
type Totals struct {
	ProductsValue decimal.Decimal
	FreightValue  decimal.Decimal
	InvoiceValue  decimal.Decimal
}

// Transport carries the freight mode and carrier data.
type Transport struct {
	Mode    string
	Carrier Party
}

// Document is a parsed NFe: the access key, the parties, totals,
// transport data and the normalized line items. Products that fail
// validation are skipped and reported in Warnings.
type Document struct {
	InvoiceKey string
	Issuer     Party
	Recipient  Party
	Totals     Totals
	Transport  Transport
	Items      []model.LineItem
	Warnings   []string
}

// Parse parses NFe XML content. Both the bare <NFe> root and the
// signed-process <nfeProc> wrapper are accepted.
func Parse(content []byte) (*Document, error) {
	var root nfeRoot

	var proc nfeProc
	if err := xml.Unmarshal(content, &proc); err == nil {
		root = proc.NFe
	} else if err := xml.Unmarshal(content, &root); err != nil {
		return nil, model.NewParseError("xml", "failed to parse NFe XML", err)
	}

	inf := root.InfNFe
	if len(inf.Det) == 0 {
		return nil, model.NewParseError("det", "no products found in NFe", nil)
	}

	doc := &Document{
		InvoiceKey: invoiceKey(inf.ID),
		Issuer:     toParty(inf.Issuer),
		Recipient:  toParty(inf.Dest),
		Transport: Transport{
			Mode:    inf.Transp.Mode,
			Carrier: toParty(inf.Transp.Carrier),
		},
	}

	doc.Totals = Totals{
		ProductsValue: parseAmount(inf.Total.ICMSTot.ProductsValue),
		FreightValue:  parseAmount(inf.Total.ICMSTot.FreightValue),
		InvoiceValue:  parseAmount(inf.Total.ICMSTot.InvoiceValue),
	}

	for _, det := range inf.Det {
		item, err := convertProduct(det)
		if err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("item %s: %v", det.ItemNo, err))
			continue
		}
		doc.Items = append(doc.Items, *item)
	}

	return doc, nil
}

func convertProduct(det nfeDet) (*model.LineItem, error) {
	prod := det.Product

	if prod.Code == "" || prod.Description == "" || prod.NCM == "" {
		return nil, fmt.Errorf("product %q has incomplete data", prod.Code)
	}

	ncm := fiscal.NormalizeNCM(prod.NCM)
	if !fiscal.ValidNCM(ncm) {
		return nil, fmt.Errorf("product %q has invalid NCM %q", prod.Code, prod.NCM)
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(prod.Quantity))
	if err != nil {
		return nil, fmt.Errorf("product %q has invalid quantity %q", prod.Code, prod.Quantity)
	}
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(prod.UnitPrice))
	if err != nil {
		return nil, fmt.Errorf("product %q has invalid unit price %q", prod.Code, prod.UnitPrice)
	}
	if !quantity.IsPositive() || !unitPrice.IsPositive() {
		return nil, fmt.Errorf("product %q has non-positive quantity or unit price", prod.Code)
	}

	item := &model.LineItem{
		Code:        prod.Code,
		Description: prod.Description,
		NCM:         ncm,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalValue:  parseAmount(prod.TotalValue),
		IPI:         ipiValue(det.Tax.IPI),
		Freight:     parseAmount(prod.Freight),
	}
	return item, nil
}

// ipiValue reads the IPI amount from whichever block is present.
func ipiValue(ipi nfeIPI) decimal.Decimal {
	if v := parseAmount(ipi.Taxed.Value); !v.IsZero() {
		return v
	}
	return parseAmount(ipi.NonTaxed.Value)
}

// invoiceKey strips the "NFe" prefix from infNFe@Id and keeps the key
// only when it is a valid 44-digit access key.
func invoiceKey(id string) string {
	key := strings.TrimPrefix(strings.TrimSpace(id), "NFe")
	if !fiscal.ValidInvoiceKey(key) {
		return ""
	}
	return key
}

// parseAmount parses an optional decimal field, zero when absent or
// malformed.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toParty(p nfeParty) Party {
	return Party{
		CNPJ:      p.CNPJ,
		Name:      p.Name,
		TradeName: p.TradeName,
	}
}
