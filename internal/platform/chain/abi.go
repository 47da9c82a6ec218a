package chain

// lotteryABI covers the slice of the lottery contract this service talks to:
// the five view functions feeding the snapshot, the settled-day accessor, and
// the single payable write.
const lotteryABI = `[
  {"type":"function","name":"currentDay","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getDayPot","stateMutability":"view","inputs":[{"name":"day","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getRequiredETH","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getTotalTicketsToday","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getUserTickets","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"day","type":"uint256"},{"name":"number","type":"uint256"}]}]},
  {"type":"function","name":"dayInfos","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"pot","type":"uint256"},{"name":"eco","type":"uint256"},{"name":"drawn","type":"bool"},{"name":"paid","type":"bool"},{"name":"winningNumber","type":"uint256"},{"name":"prizeClaimed","type":"bool"},{"name":"drawTimestamp","type":"uint256"},{"name":"hasWinner","type":"bool"}]},
  {"type":"function","name":"buyTickets","stateMutability":"payable","inputs":[{"name":"count","type":"uint256"}],"outputs":[]}
]`
