/*
Engine implements the single-threaded decision loop.

# Module
  - in-memory bus: delivers market data & execution events in order
  - strategy runtime: one Decide pass per book update, no parallelism
  - quote slots: at most one resting order per side, cancel/replace on
    price moves, same-price requotes absorbed as no-ops
  - risk tracker: signed inventory, hard limit, unconditional hedging
    of every fill on the reference book

# Source
 1. market data & execution events from the gateway feed
 2. synthetic books from the paper trading tool
 3. WAL replay from the replay tool

# Produce
  - insert/cancel/hedge commands to the outbound order queue
*/
package engine
