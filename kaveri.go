// Package kaveri provides a local, CLI-based tool for the Kaveri property
// registration portal. It indexes the portal's administrative location
// hierarchy (district, taluka, hobli, village) into a queryable local
// store and drives captcha-gated batch EC searches across that hierarchy.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, http/, twocaptcha/).
package kaveri
