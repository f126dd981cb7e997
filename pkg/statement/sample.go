package statement

// SampleStatementData returns the data used by live previews.
func SampleStatementData() StatementData {
	return StatementData{
		Summary: Summary{
			From:            "2024-01-01",
			To:              "2024-01-31",
			PreviousBalance: "1,000,000",
			TotalCredit:     "1,000,000",
			TotalDebit:      "500,000",
			BalanceDue:      "500,000",
			Currency:        "IQD",
		},
		User: User{
			Name:   "Ahmed Kareem",
			Email:  "ahmed@example.com",
			Mobile: "+964 770 000 0000",
		},
		Company: Company{
			Name:     "Roda Travel",
			Address:  "Karrada, Baghdad",
			TextLogo: true,
		},
		Transactions: []TransactionLine{
			{
				No:         "1",
				Date:       "2024-01-05",
				PNR:        "ABC123",
				BookingID:  "BK-1001",
				Details:    "BGW-IST round trip",
				Type:       "DT-ISSUE",
				DebitIQD:   "500,000",
				DebitUSD:   "-",
				CreditIQD:  "-",
				CreditUSD:  "-",
				BalanceIQD: "1,500,000",
				InvoiceNo:  "INV-2024-001",
			},
			{
				No:         "2",
				Date:       "2024-01-20",
				PNR:        "-",
				BookingID:  "-",
				Details:    "Cash payment",
				Type:       "PAYMENT",
				DebitIQD:   "-",
				DebitUSD:   "-",
				CreditIQD:  "1,000,000",
				CreditUSD:  "-",
				BalanceIQD: "500,000",
				InvoiceNo:  "-",
			},
		},
	}
}

// SampleVoucherData returns the data used by voucher previews.
func SampleVoucherData() VoucherData {
	return VoucherData{
		Voucher: Voucher{
			Number:        "RV-0001",
			Date:          "2024-01-20",
			Type:          "Receipt",
			Amount:        "1,000,000",
			Currency:      "IQD",
			AmountInWords: "One million Iraqi dinars",
			Description:   "Settlement of January balance",
			ReceivedFrom:  "Ahmed Kareem",
			PaidTo:        "-",
			Method:        "Cash",
		},
		Company: Company{
			Name:     "Roda Travel",
			Address:  "Karrada, Baghdad",
			TextLogo: true,
		},
		Employee: Employee{Name: "Sara Ali"},
	}
}
