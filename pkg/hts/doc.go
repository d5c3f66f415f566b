// Package hts issues faucet tokens on the Hedera Token Service.
//
// It applies the same amount policy as the in-process faucet, using the
// decimals the mirror node reports for the token, and maps preflight failures
// onto faucet error kinds. Airdrops mint to the treasury and then transfer to
// the recipient; claims transfer from the operator's balance.
//
// # Building transactions
//
//	mintTx, err := hts.BuildMintTx(hts.MintTxParams{TokenID: "0.0.5005", Amount: 10_000_000})
//	transferTx, err := hts.BuildTransferTx(hts.TransferTxParams{
//		TokenID: "0.0.5005",
//		From:    "0.0.1001",
//		To:      "0.0.2002",
//		Amount:  10_000_000,
//	})
//
// # Client
//
//	client, err := hts.NewClient(hts.ClientConfig{
//		Network:            "testnet",
//		OperatorAccountID:  operator.AccountID,
//		OperatorPrivateKey: operator.PrivateKey,
//	})
//	result, err := client.Claim(ctx, hts.IssueOptions{TokenID: "0.0.5005", To: "0.0.2002"})
package hts
