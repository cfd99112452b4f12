package app

// SeatCount is the number of players a Caravan game needs. Both seats must be
// filled before the owner can start.
const SeatCount = 2
