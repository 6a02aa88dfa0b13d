// Package ratelimit fornece adapters HTTP (net/http) para identificação do
// cliente, flood guard e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (compra, flood guard, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela por cliente, token bucket, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo de POST /api/buy:
//
//  1. Concorrência: sem vaga, responde 503
//  2. Flood guard por IP de origem: estourou, responde 429
//  3. ClientKeyFunc extrai a chave (x-client-id, senão endereço de origem)
//  4. application.PurchaseService decide; o pacote api traduz para 200/429
package ratelimit
