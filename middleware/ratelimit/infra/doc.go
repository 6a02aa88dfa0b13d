// Package infra contém implementações concretas para os contratos definidos
// no pacote domain.
//
// Exemplos:
//   - WindowLimiter: última compra por cliente, em shards, com janitor
//   - Store: token bucket por IP usando golang.org/x/time/rate (flood guard)
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: contadores de compras
package infra
