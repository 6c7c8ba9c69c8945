package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"CallService/entity"
)

func TestTransactionsWorkbook(t *testing.T) {
	data, err := Transactions([]TransactionRow{
		{TransactionID: 12, Protocol: "1700-12", Status: "FINISHED",
			Sector: "Suporte", CustomerID: 7, Customer: "Maria", PhoneNumber: "5511888"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("transactions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Protocol", rows[0][4])
	assert.Equal(t, "1700-12", rows[1][4])
	assert.Equal(t, "Maria", rows[1][8])
}

func TestCustomersWorkbook(t *testing.T) {
	data, err := Customers([]entity.Customer{
		{CustomerID: 7, Name: "Maria", PushName: "mari", PhoneNumber: "5511888", Wuid: "5511888@w"},
		{CustomerID: 8, Name: "José", PushName: "zé", PhoneNumber: "5511777", Wuid: "5511777@w"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("customers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "Maria", rows[1][1])
	assert.Equal(t, "José", rows[2][1])
}

func TestFileName(t *testing.T) {
	name := FileName("transactions", 10, "João Silva")
	assert.True(t, strings.HasPrefix(name, "transactions_"))
	assert.True(t, strings.HasSuffix(name, "_10_joão_silva.xlsx"))
	assert.NotContains(t, name, " ")
}
