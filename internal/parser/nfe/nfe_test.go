package nfe_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/icmsst/internal/parser/nfe"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35200714200166000187550010000000046550000046" versao="4.00">
      <emit>
        <CNPJ>14200166000187</CNPJ>
        <xNome>Distribuidora Exemplo LTDA</xNome>
        <xFant>Exemplo</xFant>
      </emit>
      <dest>
        <CNPJ>11222333000181</CNPJ>
        <xNome>Comercio Destino ME</xNome>
      </dest>
      <det nItem="1">
        <prod>
          <cProd>A100</cProd>
          <xProd>Parafuso sextavado</xProd>
          <NCM>7318.15.00</NCM>
          <qCom>10.0000</qCom>
          <vUnCom>9.5000</vUnCom>
          <vProd>95.00</vProd>
          <vFrete>2.50</vFrete>
        </prod>
        <imposto>
          <IPI>
            <IPITrib>
              <vIPI>4.75</vIPI>
            </IPITrib>
          </IPI>
        </imposto>
      </det>
      <det nItem="2">
        <prod>
          <cProd>B200</cProd>
          <xProd>Porca sextavada</xProd>
          <NCM>73181600</NCM>
          <qCom>0</qCom>
          <vUnCom>10.00</vUnCom>
          <vProd>0.00</vProd>
        </prod>
      </det>
      <total>
        <ICMSTot>
          <vProd>95.00</vProd>
          <vFrete>2.50</vFrete>
          <vNF>102.25</vNF>
        </ICMSTot>
      </total>
      <transp>
        <modFrete>1</modFrete>
        <transporta>
          <CNPJ>99888777000166</CNPJ>
          <xNome>Transportes Rapidos</xNome>
        </transporta>
      </transp>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParse(t *testing.T) {
	doc, err := nfe.Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "35200714200166000187550010000000046550000046", doc.InvoiceKey)
	assert.Equal(t, "14200166000187", doc.Issuer.CNPJ)
	assert.Equal(t, "Distribuidora Exemplo LTDA", doc.Issuer.Name)
	assert.Equal(t, "Exemplo", doc.Issuer.TradeName)
	assert.Equal(t, "11222333000181", doc.Recipient.CNPJ)

	assert.True(t, doc.Totals.ProductsValue.Equal(decimal.RequireFromString("95.00")))
	assert.True(t, doc.Totals.InvoiceValue.Equal(decimal.RequireFromString("102.25")))

	assert.Equal(t, "1", doc.Transport.Mode)
	assert.Equal(t, "Transportes Rapidos", doc.Transport.Carrier.Name)
}

func TestParse_Items(t *testing.T) {
	doc, err := nfe.Parse([]byte(sampleDoc))
	require.NoError(t, err)

	// Second product has zero quantity and is skipped with a warning
	require.Len(t, doc.Items, 1)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "B200")

	item := doc.Items[0]
	assert.Equal(t, "A100", item.Code)
	assert.Equal(t, "Parafuso sextavado", item.Description)
	// NCM is normalized from the dotted form
	assert.Equal(t, "73181500", item.NCM)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("9.5")))
	assert.True(t, item.TotalValue.Equal(decimal.RequireFromString("95.00")))
	assert.True(t, item.IPI.Equal(decimal.RequireFromString("4.75")))
	assert.True(t, item.Freight.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, item.ExtraFreight.IsZero())
}

func TestParse_BareNFeRoot(t *testing.T) {
	bare := `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe Id="NFe35200714200166000187550010000000046550000046">
    <det nItem="1">
      <prod>
        <cProd>C1</cProd>
        <xProd>Produto avulso</xProd>
        <NCM>12345678</NCM>
        <qCom>1</qCom>
        <vUnCom>10</vUnCom>
        <vProd>10</vProd>
      </prod>
    </det>
  </infNFe>
</NFe>`

	doc, err := nfe.Parse([]byte(bare))
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "C1", doc.Items[0].Code)
}

func TestParse_InvalidXML(t *testing.T) {
	_, err := nfe.Parse([]byte("not xml at all"))
	require.Error(t, err)
}

func TestParse_NoProducts(t *testing.T) {
	empty := `<NFe><infNFe Id="NFe123"></infNFe></NFe>`
	_, err := nfe.Parse([]byte(empty))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no products")
}

func TestParse_InvalidKeyDropped(t *testing.T) {
	doc, err := nfe.Parse([]byte(`<NFe><infNFe Id="NFe123">
    <det nItem="1"><prod><cProd>C1</cProd><xProd>P</xProd><NCM>12345678</NCM><qCom>1</qCom><vUnCom>10</vUnCom><vProd>10</vProd></prod></det>
  </infNFe></NFe>`))
	require.NoError(t, err)
	assert.Empty(t, doc.InvoiceKey)
}
