// Package domain define contratos e tipos de domínio para o limite de compras
// por cliente, para o flood guard e para o limite de concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A regra de compra (Decide) é pura: recebe o registro anterior e o instante
// atual, e devolve a decisão. Quem guarda o estado é a camada infra.
package domain
