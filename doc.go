// Package hgs implements the Hybrid Genetic Search algorithm for the
// Capacitated Vehicle Routing Problem (CVRP) with an optional route-duration
// constraint.
//
// Developers: Thibaut Vidal (original C++ HGS-CVRP) and contributors.
//
// Please cite as:
// Vidal, T. (2022). Hybrid genetic search for the CVRP: Open-source
// implementation and SWAP* neighborhood. Computers & Operations Research,
// 140, 105643. https://doi.org/10.1016/j.cor.2021.105643
package hgs
