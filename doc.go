/*
Fluid is a golang implementation of a decentralized ID generation algorithm.
Each process mints 64-bit time-ordered identifiers on its own, so there is no
server round trip and no single point of failure on the generation path.
His main characteristics:

* every identifier combines timestamp bits with an instance id and random
bits, so identifiers sort by creation time and stay unique across processes
with a documented, tunable collision probability.
* each process leases a small instance id from a shared durable store (etcd
or a bolt file) once at startup; record existence alone means "in use", so
there is no heartbeat and a crashed process only orphans one small integer.
* identifiers can be exposed externally as fixed-width base62 strings whose
lexicographic order equals their numeric order.

Fluid is written in the golang.
Consists of the generator, lease and codec libraries, plus a gRPC server and
client for processes that should not hold their own lease.
*/
package main
