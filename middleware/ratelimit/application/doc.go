// Package application contém os casos de uso do limite de compras, do flood
// guard e do limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: PurchaseService.Attempt(ctx, key) devolve uma PurchaseDecision.
package application
