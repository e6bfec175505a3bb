package main

// configTemplate takes the league data file path as its only argument.
const configTemplate = `# Fixture Calendar Configuration
# ==============================
# This file defines how the calendar of one division is generated.

# Season the fixtures belong to. start_date is moved forward to the next
# play day when it falls on another weekday.
season:
  id: "2026-apertura"
  start_date: "2026-03-04"

# Division to schedule. When category_id is set only the teams of that
# category take part and every fixture is stamped with it; otherwise the
# first category of the division is used.
division:
  id: juvenil
  category_id: ""

# Slot grid. Each round is played on play_day, one week apart, with
# kickoffs every interval_minutes from first to last inclusive.
# Full calendars are cut at max_rounds rounds.
slots:
  play_day: sunday
  first: "07:00"
  last: "16:00"
  interval_minutes: 60
  max_rounds: 9

options:
  use_available_fields_only: true   # skip fields under maintenance or closed
  use_groups: false                 # split large divisions into groups
  group_size: 9                     # teams per group when use_groups is set
  generate_by_round: false          # create one round, dated on start_date
  round: 0                          # round for generate_by_round (0: the next one)
  double_round_robin: false         # second leg with home and away swapped
  skip_existing_pairings: true      # do not recreate pairings already stored
  failure_policy: best_effort       # best_effort or fail_fast
  workers: 1                        # concurrent writes to the store

# Where teams, fields and fixtures live. The memory driver reads and writes
# a YAML data file; the postgres driver uses dsn or DATABASE_URL.
store:
  driver: memory
  data_file: "%s"
  dsn: ""

log:
  level: info        # debug, info, warn, error
  format: console    # console or json
`

const leagueTemplate = `# League data for the memory store. Generated fixtures are appended
# under matches.
divisions:
  - id: juvenil
    name: Juvenil

categories:
  - id: sub15
    name: Sub 15
    division_id: juvenil

teams:
  - {id: aguilas, name: Águilas, division_id: juvenil, category_id: sub15}
  - {id: buhos, name: Búhos, division_id: juvenil, category_id: sub15}
  - {id: condores, name: Cóndores, division_id: juvenil, category_id: sub15}
  - {id: delfines, name: Delfines, division_id: juvenil, category_id: sub15}
  - {id: halcones, name: Halcones, division_id: juvenil, category_id: sub15}
  - {id: jaguares, name: Jaguares, division_id: juvenil, category_id: sub15}

fields:
  - {id: norte, name: Cancha Norte, status: available}
  - {id: sur, name: Cancha Sur, status: available}
  - {id: central, name: Cancha Central, status: maintenance}

matches: []
`
