// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema centralizes table and column identifiers for the Meserio
database.

Each table is described by a struct of column names plus a singleton value
used by the repositories when composing SQL. Keeping the identifiers here
means a rename is a one-file change and typos become compile errors instead
of runtime SQL failures.

Layout:

  - taxonomy.* : clusters, categories, services and their translations.
  - forms.*    : questions, options, answers and their translations.
*/
package schema
